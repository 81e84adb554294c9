package ruleset

// Kick data below uses (dx, dy) with y pointing up.

var jlstzKicks = KickTable{
	"0>1": {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
	"1>0": {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
	"1>2": {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
	"2>1": {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
	"2>3": {{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},
	"3>2": {{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
	"3>0": {{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
	"0>3": {{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},
	"0>2": {{0, 0}, {0, 1}, {1, 1}, {-1, 1}, {1, 0}, {-1, 0}},
	"1>3": {{0, 0}, {1, 0}, {1, 2}, {1, 1}, {0, 2}, {0, 1}},
	"2>0": {{0, 0}, {0, -1}, {-1, -1}, {1, -1}, {-1, 0}, {1, 0}},
	"3>1": {{0, 0}, {-1, 0}, {-1, 2}, {-1, 1}, {0, 2}, {0, 1}},
}

var iKicks = KickTable{
	"0>1": {{0, 0}, {-2, 0}, {1, 0}, {-2, -1}, {1, 2}},
	"1>0": {{0, 0}, {2, 0}, {-1, 0}, {2, 1}, {-1, -2}},
	"1>2": {{0, 0}, {-1, 0}, {2, 0}, {-1, 2}, {2, -1}},
	"2>1": {{0, 0}, {1, 0}, {-2, 0}, {1, -2}, {-2, 1}},
	"2>3": {{0, 0}, {2, 0}, {-1, 0}, {2, 1}, {-1, -2}},
	"3>2": {{0, 0}, {-2, 0}, {1, 0}, {-2, -1}, {1, 2}},
	"3>0": {{0, 0}, {1, 0}, {-2, 0}, {1, -2}, {-2, 1}},
	"0>3": {{0, 0}, {-1, 0}, {2, 0}, {-1, 2}, {2, -1}},
	"0>2": {{0, 0}, {0, 1}},
	"1>3": {{0, 0}, {1, 0}},
	"2>0": {{0, 0}, {0, -1}},
	"3>1": {{0, 0}, {-1, 0}},
}

// Guideline returns the standard rotation system: SRS shapes and wall kicks,
// plus a 180-degree kick table.
func Guideline() *Ruleset {
	return &Ruleset{
		Name: "guideline",
		Kicks: map[string]KickTable{
			"jlstz": jlstzKicks.clone(),
			"i":     iKicks.clone(),
		},
		Pieces: []Piece{
			{
				Color: "I", SpawnCol: 3, SpawnRow: 21, Kicks: "i",
				Shapes: [][]string{
					{"....", "IIII", "....", "...."},
					{"..I.", "..I.", "..I.", "..I."},
					{"....", "....", "IIII", "...."},
					{".I..", ".I..", ".I..", ".I.."},
				},
			},
			{
				Color: "J", SpawnCol: 3, SpawnRow: 21, Kicks: "jlstz",
				Shapes: [][]string{
					{"J..", "JJJ", "..."},
					{".JJ", ".J.", ".J."},
					{"...", "JJJ", "..J"},
					{".J.", ".J.", "JJ."},
				},
			},
			{
				Color: "L", SpawnCol: 3, SpawnRow: 21, Kicks: "jlstz",
				Shapes: [][]string{
					{"..L", "LLL", "..."},
					{".L.", ".L.", ".LL"},
					{"...", "LLL", "L.."},
					{"LL.", ".L.", ".L."},
				},
			},
			{
				Color: "O", SpawnCol: 4, SpawnRow: 21,
				Shapes: [][]string{
					{"OO", "OO"},
				},
			},
			{
				Color: "S", SpawnCol: 3, SpawnRow: 21, Kicks: "jlstz",
				Shapes: [][]string{
					{".SS", "SS.", "..."},
					{".S.", ".SS", "..S"},
					{"...", ".SS", "SS."},
					{"S..", "SS.", ".S."},
				},
			},
			{
				Color: "T", SpawnCol: 3, SpawnRow: 21, Kicks: "jlstz",
				Shapes: [][]string{
					{".T.", "TTT", "..."},
					{".T.", ".TT", ".T."},
					{"...", "TTT", ".T."},
					{".T.", "TT.", ".T."},
				},
			},
			{
				Color: "Z", SpawnCol: 3, SpawnRow: 21, Kicks: "jlstz",
				Shapes: [][]string{
					{"ZZ.", ".ZZ", "..."},
					{"..Z", ".ZZ", ".Z."},
					{"...", "ZZ.", ".ZZ"},
					{".Z.", "ZZ.", "Z.."},
				},
			},
		},
	}
}

func (kt KickTable) clone() KickTable {
	out := make(KickTable, len(kt))
	for k, v := range kt {
		out[k] = append([][2]int(nil), v...)
	}
	return out
}
