// Package models lists the OpenAI models dsreview can use: TTS models for
// plain text previews and chat models for pronunciation predictions.
package models
