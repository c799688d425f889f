// Package dataset reads and writes speech dataset filelists.
//
// A filelist is a headerless delimited text file. Column 0 holds the audio
// path relative to the dataset root and column 1 the transcription. Any
// further columns (speaker ids, normalized text) are kept as they are and
// written back on save.
package dataset
