package mapper

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/erraggy/yw7tools/host"
)

// Host field names of model attributes.
const (
	fTitle          = "title"
	fDesc           = "desc"
	fNotes          = "notes"
	fTags           = "tags"
	fAKA            = "aka"
	fBio            = "bio"
	fGoals          = "goals"
	fFullName       = "fullName"
	fIsMajor        = "isMajor"
	fAuthorName     = "authorName"
	fWordCountStart = "wordCountStart"
	fWordTarget     = "wordTarget"
	fLanguageCode   = "languageCode"
	fCountryCode    = "countryCode"
	fLanguages      = "languages"
	fWordCountLog   = "wordCountLog"
	fChLevel        = "chLevel"
	fChType         = "chType"
	fContent        = "content"
	fScType         = "scType"
	fStatus         = "status"
	fAppendToPrev   = "appendToPrev"
	fDate           = "date"
	fTime           = "time"
	fDay            = "day"
	fLastsDays      = "lastsDays"
	fLastsHours     = "lastsHours"
	fLastsMinutes   = "lastsMinutes"
	fGoal           = "goal"
	fConflict       = "conflict"
	fOutcome        = "outcome"
	fSceneKind      = "sceneKind"
	fShortName      = "shortName"
)

var attributeFields = map[host.Kind][]string{
	host.KindNovel: {fTitle, fDesc, fAuthorName, fWordCountStart, fWordTarget,
		fLanguageCode, fCountryCode, fLanguages, fWordCountLog},
	host.KindChapter: {fTitle, fDesc, fChLevel, fChType},
	host.KindSection: {fTitle, fDesc, fContent, fScType, fStatus, fNotes, fTags,
		fAppendToPrev, fDate, fTime, fDay, fLastsDays, fLastsHours, fLastsMinutes,
		fGoal, fConflict, fOutcome, fSceneKind},
	host.KindCharacter:   {fTitle, fDesc, fNotes, fAKA, fTags, fBio, fGoals, fFullName, fIsMajor},
	host.KindLocation:    {fTitle, fDesc, fAKA, fTags},
	host.KindItem:        {fTitle, fDesc, fAKA, fTags},
	host.KindPlotLine:    {fTitle, fDesc, fShortName},
	host.KindPlotPoint:   {fTitle, fDesc},
	host.KindProjectNote: {fTitle, fDesc},
}

// IsAttributeField reports whether name is a model attribute of the kind
// rather than a custom field.
func IsAttributeField(kind host.Kind, name string) bool {
	for _, f := range attributeFields[kind] {
		if f == name {
			return true
		}
	}
	return false
}

// yw7 custom fields that novx models as named attributes.
var knownCustomFields = []string{
	"Field_WorkPhase",
	"Field_RenumberChapters",
	"Field_RenumberParts",
	"Field_RenumberWithinParts",
	"Field_RomanChapterNumbers",
	"Field_RomanPartNumbers",
	"Field_ChapterHeadingPrefix",
	"Field_ChapterHeadingSuffix",
	"Field_PartHeadingPrefix",
	"Field_PartHeadingSuffix",
	"Field_CustomGoal",
	"Field_CustomConflict",
	"Field_CustomOutcome",
	"Field_CustomChrBio",
	"Field_CustomChrGoals",
	"Field_SaveWordCount",
	"Field_ReferenceDate",
	"Field_IsTrash",
	"Field_NoNumber",
	"Field_BirthDate",
	"Field_DeathDate",
	"Field_Link",
}

const customFieldPrefix = "Field_"

var (
	toHostName   = make(map[string]string, len(knownCustomFields))
	fromHostName = make(map[string]string, len(knownCustomFields))
)

func init() {
	for _, name := range knownCustomFields {
		h := lowerFirst(strings.TrimPrefix(name, customFieldPrefix))
		toHostName[name] = h
		fromHostName[h] = name
	}
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// HostFieldName returns the novx name of a yw7 custom field. Names without
// a novx counterpart pass through verbatim.
func HostFieldName(name string) string {
	if h, ok := toHostName[name]; ok {
		return h
	}
	return name
}

// ModelFieldName returns the yw7 custom field name for a novx field name.
// ok is false for names that have no yw7 home.
func ModelFieldName(hostName string) (string, bool) {
	if name, ok := fromHostName[hostName]; ok {
		return name, true
	}
	if strings.HasPrefix(hostName, customFieldPrefix) {
		return hostName, true
	}
	return "", false
}
