package notation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSettingsBlock(t *testing.T) {
	got := parseSettingsBlock(" Teacher = 10 ，singer＝２０、tempo=fast,junk,=5 ")
	assert.Equal(t, map[string]string{
		"teacher": "10",
		"singer":  "20",
		"tempo":   "fast",
	}, got)
}

func TestSettingsFullWidthValues(t *testing.T) {
	score, err := newTestParser().ParseFull("s ｛ｔｅｍｐｏ＝６０，ｖｏｉｃｅ_ｐｉｔｃｈ＝－３｝ c-")
	require.NoError(t, err)
	assert.Equal(t, -3, score.VoicePitch)
	notes := inner(t, score.Notes, 94)
	require.Len(t, notes, 1)
	assert.Equal(t, 93, notes[0].Frames)
}

func TestSettingsMalformedValuesKeepPrevious(t *testing.T) {
	score, err := newTestParser().ParseFull("s {tempo=fast,teacher=x1,tempo_note=0} c-")
	require.NoError(t, err)
	assert.Equal(t, 6000, score.Teacher)
	assert.Equal(t, 46, inner(t, score.Notes, 94)[0].Frames)
}

func TestSettingsScorePitchOnlyFromFirstBlock(t *testing.T) {
	score, err := newTestParser().ParseFull("s {score_pitch=2} c {score_pitch=7,tempo_note=8} c")
	require.NoError(t, err)
	notes := inner(t, score.Notes, 94)
	require.Len(t, notes, 2)
	assert.Equal(t, []int{62, 62}, keys(notes))
	// tempo_note=8 halves the eighth to 11.72 frames, plus the first note's carry
	assert.Equal(t, 23, notes[0].Frames)
	assert.Equal(t, 12, notes[1].Frames)
}

func TestSettingsUnknownKeysIgnored(t *testing.T) {
	score, err := newTestParser().ParseFull("s {volume=3,singer=12} c")
	require.NoError(t, err)
	assert.Equal(t, 12, score.Singer)
}
