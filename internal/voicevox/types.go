package voicevox

// EngineManifest is the subset of /engine_manifest the bot reads.
type EngineManifest struct {
	ManifestVersion     string  `json:"manifest_version"`
	Name                string  `json:"name"`
	BrandName           string  `json:"brand_name"`
	UUID                string  `json:"uuid"`
	DefaultSamplingRate int     `json:"default_sampling_rate"`
	FrameRate           float64 `json:"frame_rate"`
}

// AudioQuery is the speech synthesis request returned by /audio_query.
type AudioQuery struct {
	AccentPhrases      []AccentPhrase `json:"accent_phrases"`
	SpeedScale         float64        `json:"speedScale"`
	PitchScale         float64        `json:"pitchScale"`
	IntonationScale    float64        `json:"intonationScale"`
	VolumeScale        float64        `json:"volumeScale"`
	PrePhonemeLength   float64        `json:"prePhonemeLength"`
	PostPhonemeLength  float64        `json:"postPhonemeLength"`
	OutputSamplingRate int            `json:"outputSamplingRate"`
	OutputStereo       bool           `json:"outputStereo"`
	Kana               *string        `json:"kana"`
}

type AccentPhrase struct {
	Moras           []Mora `json:"moras"`
	Accent          int    `json:"accent"`
	PauseMora       *Mora  `json:"pause_mora"`
	IsInterrogative *bool  `json:"is_interrogative"`
}

type Mora struct {
	Text            string   `json:"text"`
	Consonant       *string  `json:"consonant"`
	ConsonantLength *float64 `json:"consonant_length"`
	Vowel           string   `json:"vowel"`
	VowelLength     float64  `json:"vowel_length"`
	Pitch           *float64 `json:"pitch"`
}

// Score is the body of /sing_frame_audio_query.
type Score struct {
	Notes []Note `json:"notes"`
}

// Note is one note on the wire. Key is omitted for rests.
type Note struct {
	Key         *int   `json:"key,omitempty"`
	FrameLength int    `json:"frame_length"`
	Lyric       string `json:"lyric"`
}

// FrameAudioQuery is the per-frame singing request returned by
// /sing_frame_audio_query and consumed by /frame_synthesis.
type FrameAudioQuery struct {
	F0                 []float64 `json:"f0"`
	Volume             []float64 `json:"volume"`
	Phonemes           []Phoneme `json:"phonemes"`
	VolumeScale        float64   `json:"volumeScale"`
	OutputSamplingRate int       `json:"outputSamplingRate"`
	OutputStereo       bool      `json:"outputStereo"`
}

type Phoneme struct {
	Phoneme     string `json:"phoneme"`
	FrameLength int    `json:"frame_length"`
}
