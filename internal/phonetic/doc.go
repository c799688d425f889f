// Package phonetic classifies the words of a transcription by how their
// pronunciation is resolved (dictionary hit or predictive fallback) and
// predicts a default ARPAbet sequence for words the dictionary lacks.
package phonetic
