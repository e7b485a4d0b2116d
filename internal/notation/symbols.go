package notation

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// group is one semantic value and every character accepted for it.
type group struct {
	value   int
	aliases []string
}

type symbolClass struct {
	name    string
	members map[rune]int
}

func (c symbolClass) has(r rune) bool {
	_, ok := c.members[r]
	return ok
}

func (c symbolClass) value(r rune) (int, bool) {
	v, ok := c.members[r]
	return v, ok
}

type symbolTable struct {
	songStart   symbolClass
	separator   symbolClass
	digit       symbolClass
	pitch       symbolClass
	rest        symbolClass
	octaveShift symbolClass
	accidental  symbolClass
	duration    symbolClass
	tuplet      symbolClass
	dot         symbolClass
	lyric       symbolClass
	braceOpen   symbolClass
	braceClose  symbolClass
	settingsSep symbolClass
	assign      symbolClass

	easyMarker     symbolClass
	easyHeaderGap  symbolClass
	easyKey        symbolClass
	easyRest       symbolClass
	easyShift      symbolClass
	easyAccidental symbolClass
	easyLength     symbolClass
	easyLyrics     symbolClass
	smallKana      symbolClass
	longVowel      symbolClass
}

// Tuplet values name the marker; tupletFactor maps them onto the length denominator.
const (
	tripletMark    = 3
	quintupletMark = 5
)

var tupletFactor = map[int]float64{
	tripletMark:    2.0 / 3.0,
	quintupletMark: 4.0 / 5.0,
}

func one(aliases ...string) []group { return []group{{aliases: aliases}} }

var symbolGroups = map[string][]group{
	"song start": one("歌", "s", "S", "ｓ", "Ｓ"),
	"separator":  one(" ", "　", "、", "。", "，", "．", ",", ".", ":", "：", "\n", "\r", "\t", ";", "；"),
	"digit": {
		{0, []string{"0", "０"}},
		{1, []string{"1", "１"}},
		{2, []string{"2", "２"}},
		{3, []string{"3", "３"}},
		{4, []string{"4", "４"}},
		{5, []string{"5", "５"}},
		{6, []string{"6", "６"}},
		{7, []string{"7", "７"}},
		{8, []string{"8", "８"}},
		{9, []string{"9", "９"}},
	},
	"pitch": {
		{0, []string{"ド", "c", "C", "ど", "と", "ト", "ﾄ", "ｃ", "Ｃ"}},
		{2, []string{"レ", "d", "D", "れ", "ﾚ", "ｄ", "Ｄ"}},
		{4, []string{"ミ", "e", "E", "み", "ﾐ", "ｅ", "Ｅ"}},
		{5, []string{"フ", "f", "F", "ふ", "ﾌ", "ｆ", "Ｆ"}},
		{7, []string{"ソ", "g", "G", "そ", "ｿ", "ｇ", "Ｇ"}},
		{9, []string{"ラ", "a", "A", "ら", "ﾗ", "ａ", "Ａ"}},
		{11, []string{"シ", "b", "B", "し", "ｼ", "ｂ", "Ｂ"}},
	},
	"rest": one("n", "N", "休", "ｎ", "Ｎ", "ん", "ﾝ", "ｍ", "Ｍ", "m", "M", "ン"),
	"octave shift": {
		{1, []string{"上", "う", "ウ", "ｳ", "h", "H", "ｈ", "Ｈ", "↑"}},
		{-1, []string{"下", "l", "L", "ｌ", "Ｌ", "↓"}},
	},
	"accidental": {
		{1, []string{"#", "＃", "♯"}},
		{-1, []string{"b", "ｂ", "♭"}},
	},
	"duration": {
		{1, []string{"1", "１"}},
		{2, []string{"2", "２"}},
		{4, []string{"4", "４", "-", "ー"}},
		{8, []string{"8", "８"}},
		{16, []string{"6", "６"}},
	},
	"tuplet": {
		{tripletMark, []string{"3", "３", "三"}},
		{quintupletMark, []string{"5", "５", "五"}},
	},
	"dot":            one("+", "＋"),
	"lyric":          one("_", "＿", "'", "’"),
	"brace open":     one("{", "｛"),
	"brace close":    one("}", "｝"),
	"settings sep":   one(",", "，", "、"),
	"settings equal": one("=", "＝"),

	"easy marker":     one("き"),
	"easy header gap": one(" ", "\n"),
	"easy key": {
		{60, []string{"ど", "ド"}},
		{62, []string{"れ", "レ"}},
		{64, []string{"み", "ミ"}},
		{65, []string{"ふ", "フ"}},
		{67, []string{"そ", "ソ"}},
		{69, []string{"ら", "ラ"}},
		{71, []string{"し", "シ"}},
	},
	"easy rest": one("ん", "休"),
	"easy shift": {
		{1, []string{"上", "↑"}},
		{-1, []string{"下", "↓"}},
	},
	"easy accidental": {
		{1, []string{"#", "＃", "♯"}},
		{-1, []string{"♭"}},
	},
	"easy length": {{4, []string{"ー"}}},
	"easy lyrics": one("「"),
	"small kana": one(
		"ぁ", "ぃ", "ぅ", "ぇ", "ぉ", "ゃ", "ゅ", "ょ", "ゎ",
		"ァ", "ィ", "ゥ", "ェ", "ォ", "ャ", "ュ", "ョ", "ヮ",
	),
	"long vowel": one("ー", "ｰ"),
}

var symbols = mustLoadSymbols(symbolGroups)

func mustLoadSymbols(groups map[string][]group) *symbolTable {
	t, err := loadSymbols(groups)
	if err != nil {
		panic(err)
	}
	return t
}

func loadSymbols(groups map[string][]group) (*symbolTable, error) {
	if err := checkAliases(groups); err != nil {
		return nil, err
	}
	class := func(name string) symbolClass {
		c := symbolClass{name: name, members: map[rune]int{}}
		for _, g := range groups[name] {
			for _, a := range g.aliases {
				r, _ := utf8.DecodeRuneInString(a)
				c.members[r] = g.value
			}
		}
		return c
	}
	return &symbolTable{
		songStart:   class("song start"),
		separator:   class("separator"),
		digit:       class("digit"),
		pitch:       class("pitch"),
		rest:        class("rest"),
		octaveShift: class("octave shift"),
		accidental:  class("accidental"),
		duration:    class("duration"),
		tuplet:      class("tuplet"),
		dot:         class("dot"),
		lyric:       class("lyric"),
		braceOpen:   class("brace open"),
		braceClose:  class("brace close"),
		settingsSep: class("settings sep"),
		assign:      class("settings equal"),

		easyMarker:     class("easy marker"),
		easyHeaderGap:  class("easy header gap"),
		easyKey:        class("easy key"),
		easyRest:       class("easy rest"),
		easyShift:      class("easy shift"),
		easyAccidental: class("easy accidental"),
		easyLength:     class("easy length"),
		easyLyrics:     class("easy lyrics"),
		smallKana:      class("small kana"),
		longVowel:      class("long vowel"),
	}, nil
}

// checkAliases requires every alias to be a single printable character.
// Separators may also be whitespace.
func checkAliases(groups map[string][]group) error {
	for name, gs := range groups {
		for _, g := range gs {
			for _, a := range g.aliases {
				if n := utf8.RuneCountInString(a); n != 1 {
					return fmt.Errorf("notation: %s alias %q is %d characters, want 1", name, a, n)
				}
				r, _ := utf8.DecodeRuneInString(a)
				if r == utf8.RuneError || !(unicode.IsPrint(r) || unicode.IsSpace(r)) {
					return fmt.Errorf("notation: %s alias %q (%U) is not printable", name, a, r)
				}
			}
		}
	}
	return nil
}
