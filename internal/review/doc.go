// Package review ties the pronunciation dictionary, the dataset filelist and
// the TTS provider together into one review session. Both the terminal
// commands and the GUI drive a *Session.
package review
