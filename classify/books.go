package classify

import (
	"sort"
	"strings"
)

// Book group names to member book short codes, Korean and English.
// Populated for the 66-book Protestant canon the corpus uses.
var bookGroupsKR = map[string][]string{
	"사복음서": {"마", "막", "눅", "요"},
	"복음서":  {"마", "막", "눅", "요"},
	"모세오경": {"창", "출", "레", "민", "신"},
	"율법서":  {"창", "출", "레", "민", "신"},
	"역사서":  {"수", "삿", "룻", "삼상", "삼하", "왕상", "왕하", "대상", "대하", "스", "느", "에"},
	"시가서":  {"욥", "시", "잠", "전", "아"},
	"지혜서":  {"욥", "시", "잠", "전", "아"},
	"대선지서": {"사", "렘", "애", "겔", "단"},
	"소선지서": {"호", "욜", "암", "옵", "욘", "미", "나", "합", "습", "학", "슥", "말"},
	"바울서신": {"롬", "고전", "고후", "갈", "엡", "빌", "골", "살전", "살후", "딤전", "딤후", "딛", "몬"},
	"일반서신": {"히", "약", "벧전", "벧후", "요일", "요이", "요삼", "유"},
	"공동서신": {"히", "약", "벧전", "벧후", "요일", "요이", "요삼", "유"},
}

var bookGroupsEN = map[string][]string{
	"four gospels":     {"Matt", "Mark", "Luke", "John"},
	"gospels":          {"Matt", "Mark", "Luke", "John"},
	"pentateuch":       {"Gen", "Ex", "Lev", "Num", "Deut"},
	"torah":            {"Gen", "Ex", "Lev", "Num", "Deut"},
	"wisdom books":     {"Job", "Ps", "Prov", "Eccl", "Song"},
	"major prophets":   {"Isa", "Jer", "Lam", "Ezek", "Dan"},
	"minor prophets":   {"Hos", "Joel", "Amos", "Obad", "Jonah", "Mic", "Nah", "Hab", "Zeph", "Hag", "Zech", "Mal"},
	"pauline epistles": {"Rom", "1Cor", "2Cor", "Gal", "Eph", "Phil", "Col", "1Thess", "2Thess", "1Tim", "2Tim", "Titus", "Philem"},
	"general epistles": {"Heb", "Jas", "1Pet", "2Pet", "1John", "2John", "3John", "Jude"},
}

// Full book names to book short codes.
var bookNamesKR = map[string]string{
	// Old Testament
	"창세기": "창", "출애굽기": "출", "레위기": "레",
	"민수기": "민", "신명기": "신", "여호수아": "수",
	"사사기": "삿", "룻기": "룻", "사무엘상": "삼상",
	"사무엘하": "삼하", "열왕기상": "왕상", "열왕기하": "왕하",
	"역대상": "대상", "역대하": "대하", "에스라": "스",
	"느헤미야": "느", "에스더": "에", "욥기": "욥",
	"시편": "시", "잠언": "잠", "전도서": "전",
	"아가": "아", "이사야": "사", "예레미야": "렘",
	"예레미아": "렘", "애가": "애", "에스겔": "겔",
	"다니엘": "단", "호세아": "호", "요엘": "욜",
	"아모스": "암", "오바댜": "옵", "요나": "욘",
	"미가": "미", "나훔": "나", "하박국": "합",
	"스바냐": "습", "학개": "학", "스가랴": "슥",
	"말라기": "말",

	// New Testament
	"마태복음": "마", "마가복음": "막", "누가복음": "눅",
	"요한복음": "요", "사도행전": "행", "로마서": "롬",
	"고린도전서": "고전", "고린도후서": "고후", "갈라디아서": "갈",
	"에베소서": "엡", "빌립보서": "빌", "골로새서": "골",
	"데살로니가전서": "살전", "데살로니가후서": "살후",
	"디모데전서": "딤전", "디모데후서": "딤후", "디도서": "딛",
	"빌레몬서": "몬", "히브리서": "히", "야고보서": "약",
	"베드로전서": "벧전", "베드로후서": "벧후",
	"요한일서": "요일", "요한이서": "요이", "요한삼서": "요삼",
	"유다서": "유", "요한계시록": "계", "계시록": "계",
}

var bookNamesEN = map[string]string{
	"genesis": "Gen", "exodus": "Ex", "leviticus": "Lev",
	"numbers": "Num", "deuteronomy": "Deut", "joshua": "Josh",
	"judges": "Judg", "ruth": "Ruth", "1 samuel": "1Sam",
	"2 samuel": "2Sam", "1 kings": "1Kgs", "2 kings": "2Kgs",
	"1 chronicles": "1Chr", "2 chronicles": "2Chr", "ezra": "Ezra",
	"nehemiah": "Neh", "esther": "Esth", "job": "Job",
	"psalms": "Ps", "proverbs": "Prov", "ecclesiastes": "Eccl",
	"song of solomon": "Song", "isaiah": "Isa", "jeremiah": "Jer",
	"lamentations": "Lam", "ezekiel": "Ezek", "daniel": "Dan",
	"hosea": "Hos", "joel": "Joel", "amos": "Amos",
	"obadiah": "Obad", "jonah": "Jonah", "micah": "Mic",
	"nahum": "Nah", "habakkuk": "Hab", "zephaniah": "Zeph",
	"haggai": "Hag", "zechariah": "Zech", "malachi": "Mal",
	"matthew": "Matt", "mark": "Mark", "luke": "Luke",
	"john": "John", "acts": "Acts", "romans": "Rom",
	"1 corinthians": "1Cor", "2 corinthians": "2Cor",
	"galatians": "Gal", "ephesians": "Eph", "philippians": "Phil",
	"colossians": "Col", "1 thessalonians": "1Thess",
	"2 thessalonians": "2Thess", "1 timothy": "1Tim",
	"2 timothy": "2Tim", "titus": "Titus", "philemon": "Philem",
	"hebrews": "Heb", "james": "Jas", "1 peter": "1Pet",
	"2 peter": "2Pet", "1 john": "1John", "2 john": "2John",
	"3 john": "3John", "jude": "Jude", "revelation": "Rev",
}

// sortedKeysByLength returns map keys longest first, so a scope fragment
// like "1 john" matches its own entry before the shorter "john".
// Equal lengths fall back to lexicographic order for determinism.
func sortedKeysByLength[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

var (
	bookGroupKeysKR = sortedKeysByLength(bookGroupsKR)
	bookGroupKeysEN = sortedKeysByLength(bookGroupsEN)
	bookNameKeysKR  = sortedKeysByLength(bookNamesKR)
	bookNameKeysEN  = sortedKeysByLength(bookNamesEN)
)

// matchBookGroup finds the first book group whose name occurs in the scope
// fragment. Returns the matched group name and its member book codes.
func matchBookGroup(scopePart string, korean bool) (string, []string, bool) {
	groups, keys := bookGroupsEN, bookGroupKeysEN
	if korean {
		groups, keys = bookGroupsKR, bookGroupKeysKR
	}
	lower := strings.ToLower(scopePart)
	for _, name := range keys {
		if strings.Contains(lower, strings.ToLower(name)) {
			return name, groups[name], true
		}
	}
	return "", nil, false
}

// matchBookName finds the first full book name occurring in the fragment.
// Returns the matched name and its short code.
func matchBookName(fragment string, korean bool) (string, string, bool) {
	names, keys := bookNamesEN, bookNameKeysEN
	if korean {
		names, keys = bookNamesKR, bookNameKeysKR
	}
	lower := strings.ToLower(fragment)
	for _, name := range keys {
		if strings.Contains(lower, strings.ToLower(name)) {
			return name, names[name], true
		}
	}
	return "", "", false
}
