package classify

// Prototype phrases for embedding-similarity classification. Each set is a
// hand-curated sample of one category, in both supported languages. The
// classifiers embed every phrase once at startup and compare queries against
// the mean similarity per set.

// keywordPrototypes sample queries that name a specific word, person or
// place and ask to find its occurrences.
var keywordPrototypes = []string{
	// Korean
	"가사라는 지명이 나오는 구절",
	"모세가 등장하는 구절을 찾아줘",
	"다윗이라는 이름이 나오는 성경 구절",
	"아브라함이 언급된 부분",
	"예루살렘이 나오는 곳",
	"바울이라는 단어가 포함된 구절",
	"베드로가 나오는 성경",
	"시온이라는 지명",
	"갈릴리가 언급되는 구절",
	"여리고가 등장하는",

	// English
	"verses containing the word shepherd",
	"find verses that mention Moses",
	"passages where David appears",
	"verses with the name Abraham",
	"scriptures mentioning Jerusalem",
	"verses that contain the word love",
	"find where Paul is mentioned",
	"passages with the word faith",
	"verses including the term righteousness",
	"scriptures containing Galilee",
}

// semanticPrototypes sample queries that ask about a theme, concept or
// feeling.
var semanticPrototypes = []string{
	// Korean
	"사랑에 대한 말씀",
	"용서에 관한 구절",
	"믿음의 의미를 알려주는 성경",
	"힘든 시간에 위로가 되는 말씀",
	"하나님의 사랑을 느낄 수 있는 구절",
	"소망과 희망에 대해",
	"감사에 관련된 성경 구절",
	"평안을 주는 말씀",
	"지혜로운 삶에 대한 가르침",
	"겸손함에 대해 말하는 구절",

	// English
	"verses about God's love",
	"what does the Bible say about forgiveness",
	"comfort in times of suffering",
	"passages about faith and trust",
	"scriptures on hope and encouragement",
	"teachings about wisdom",
	"verses related to peace and rest",
	"passages concerning eternal life",
	"what the Bible teaches about humility",
	"scriptures about gratitude and thanksgiving",
}

// scopePrototypes sample queries that carry a scope constraint
// (testament, book group, single book or multiple books).
var scopePrototypes = []string{
	// Testament - Korean
	"신약에서 나오는 구절",
	"구약에서 언급된 말씀",
	"신약성경에서 사랑에 대한",
	"구약성서에서 예언된",

	// Testament - English
	"verses from the new testament",
	"passages in the old testament",
	"in the NT about love",
	"OT prophecies about",

	// Book groups - Korean
	"사복음서에서 사랑이 나온 구절",
	"복음서에서 예수님의 말씀",
	"모세오경에서 율법에 대한",
	"바울서신에서 믿음에 관한",
	"시가서에서 찬양에 대해",
	"대선지서에서 예언",
	"소선지서에서 심판",

	// Book groups - English
	"in the four gospels about",
	"from the pentateuch about",
	"pauline epistles on faith",
	"wisdom books about",

	// Single book - Korean
	"로마서에서 복음의 정의",
	"창세기에서 창조에 대한",
	"요한복음에서 영생에 관한",
	"시편에서 위로의 말씀",
	"잠언에서 지혜에 대해",
	"이사야에서 메시아 예언",

	// Single book - English
	"in Romans about justification",
	"in Genesis about creation",
	"from John about eternal life",
	"in Psalms about comfort",

	// Multiple books - Korean
	"이사야, 예레미야에서 구원이 언급된",
	"마태복음과 요한복음에서 기적",
	"고린도전서와 후서에서 교회에 대해",
	"에베소서, 빌립보서에서 기쁨",
}

// noScopePrototypes sample queries with no scope constraint.
var noScopePrototypes = []string{
	"사랑에 대한 말씀",
	"용서에 관한 구절",
	"하나님의 은혜",
	"믿음의 의미",
	"소망에 대해",
	"평안을 주는 말씀",
	"위로의 구절",
	"verses about love",
	"what does the Bible say about forgiveness",
	"comfort in suffering",
	"faith and trust",
	"모세가 나오는 구절",
	"다윗이 언급된",
	"예루살렘이 나오는",
}
