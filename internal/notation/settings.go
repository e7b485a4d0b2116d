package notation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Settings keys recognised inside a {...} block.
const (
	settingTeacher    = "teacher"
	settingSinger     = "singer"
	settingScorePitch = "score_pitch"
	settingVoicePitch = "voice_pitch"
	settingTempo      = "tempo"
	settingTempoNote  = "tempo_note"
)

// parseSettingsBlock reads the body of one settings block (braces excluded).
// Full-width keys and values are folded to ASCII.
func parseSettingsBlock(raw string) map[string]string {
	block := map[string]string{}
	pairs := strings.FieldsFunc(raw, func(r rune) bool { return symbols.settingsSep.has(r) })
	for _, pair := range pairs {
		eq := strings.IndexFunc(pair, func(r rune) bool { return symbols.assign.has(r) })
		if eq < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(width.Narrow.String(pair[:eq])))
		if key == "" {
			continue
		}
		_, n := utf8.DecodeRuneInString(pair[eq:])
		block[key] = strings.TrimSpace(width.Narrow.String(pair[eq+n:]))
	}
	return block
}

// settingInt overwrites dst when key holds an integer accepted by ok.
func settingInt(block map[string]string, key string, dst *int, ok func(int) bool) bool {
	raw, present := block[key]
	if !present {
		return false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || (ok != nil && !ok(v)) {
		return false
	}
	*dst = v
	return true
}

func positive(v int) bool { return v > 0 }

// applySettings applies one block. Voice and pitch keys only count in the
// first block of a parse; tempo keys count in every block.
func (r *fullRun) applySettings(raw string) {
	block := parseSettingsBlock(raw)
	first := !r.settingsSeen
	r.settingsSeen = true
	if first {
		settingInt(block, settingTeacher, &r.score.Teacher, nil)
		settingInt(block, settingSinger, &r.score.Singer, nil)
		settingInt(block, settingScorePitch, &r.scorePitch, nil)
		settingInt(block, settingVoicePitch, &r.score.VoicePitch, nil)
	}
	settingInt(block, settingTempo, &r.tempo, positive)
	settingInt(block, settingTempoNote, &r.tempoNote, positive)
	r.log.Debug("notation: settings applied",
		"first", first,
		"teacher", r.score.Teacher,
		"singer", r.score.Singer,
		"tempo", r.tempo,
		"tempo_note", r.tempoNote,
	)
}
