// Package audio synthesizes pronunciation previews and plays them back.
//
// The Uberduck provider submits speech and polls a status endpoint until the
// clip is ready; polling is bounded and surfaces a timeout error instead of
// looping forever. The OpenAI provider speaks plain text and caches the
// resulting mp3 files on disk.
package audio
