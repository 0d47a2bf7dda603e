// Package logger is a structured event log for shell sessions.
//
// Each event is written as one JSON object per line so logs from many
// sessions can be concatenated and summarized later.
package logger
