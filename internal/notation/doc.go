// Package notation turns chat text written in the bot's score notations into
// timed notes for the singing engine.
//
// Full notation starts with a song marker (歌, s or S) and a separator. Each
// separator-delimited token describes one note:
//
//	[octave][up/down][pitch][#/b][length][tuplet][dot][_lyric]
//
// for example "s c-,d-,e-,f-" or "歌 4ど4_あ れ ↑ど2". A token that opens with a
// brace is a settings block such as {tempo=100,teacher=6000}.
//
// Easy notation starts with き and a space. Note characters (ど れ み ふ そ ら し)
// come first, then 「 switches to lyrics: "き どれみ「かえる".
package notation
