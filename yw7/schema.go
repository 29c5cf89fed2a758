package yw7

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// The xml* types mirror the yWriter 7 document. Element order matters to
// yWriter and follows what it writes itself.

// cdata is text written as a CDATA section.
type cdata struct {
	Text string `xml:",cdata"`
}

func (c *cdata) String() string {
	if c == nil {
		return ""
	}
	return c.Text
}

type xmlDoc struct {
	XMLName      xml.Name
	Project      *xmlProject      `xml:"PROJECT"`
	Locations    xmlLocations     `xml:"LOCATIONS"`
	Items        xmlItems         `xml:"ITEMS"`
	Characters   xmlCharacters    `xml:"CHARACTERS"`
	ProjectVars  xmlProjectVars   `xml:"PROJECTVARS"`
	Scenes       xmlScenes        `xml:"SCENES"`
	Chapters     xmlChapters      `xml:"CHAPTERS"`
	ProjectNotes *xmlProjectNotes `xml:"PROJECTNOTES"`
	WCLog        *xmlWCLog        `xml:"WCLog"`
}

type xmlProject struct {
	Ver            string     `xml:"Ver,omitempty"`
	Title          *cdata     `xml:"Title"`
	Desc           *cdata     `xml:"Desc"`
	AuthorName     *cdata     `xml:"AuthorName"`
	WordCountStart string     `xml:"WordCountStart,omitempty"`
	WordTarget     string     `xml:"WordTarget,omitempty"`
	Fields         *xmlFields `xml:"Fields"`
}

type xmlLocations struct {
	Items []*xmlWorld `xml:"LOCATION"`
}

type xmlItems struct {
	Items []*xmlWorld `xml:"ITEM"`
}

type xmlCharacters struct {
	Items []*xmlCharacter `xml:"CHARACTER"`
}

type xmlProjectVars struct {
	Items []*xmlProjectVar `xml:"PROJECTVAR"`
}

type xmlScenes struct {
	Items []*xmlScene `xml:"SCENE"`
}

type xmlChapters struct {
	Items []*xmlChapter `xml:"CHAPTER"`
}

type xmlProjectNotes struct {
	Items []*xmlProjectNote `xml:"PROJECTNOTE"`
}

type xmlWCLog struct {
	Items []*xmlWC `xml:"WC"`
}

// xmlWorld is a LOCATION or an ITEM.
type xmlWorld struct {
	ID     string     `xml:"ID"`
	Title  *cdata     `xml:"Title"`
	Desc   *cdata     `xml:"Desc"`
	AKA    *cdata     `xml:"AKA"`
	Tags   *cdata     `xml:"Tags"`
	Fields *xmlFields `xml:"Fields"`
}

type xmlCharacter struct {
	ID       string     `xml:"ID"`
	Title    *cdata     `xml:"Title"`
	Desc     *cdata     `xml:"Desc"`
	Notes    *cdata     `xml:"Notes"`
	AKA      *cdata     `xml:"AKA"`
	Tags     *cdata     `xml:"Tags"`
	Bio      *cdata     `xml:"Bio"`
	Goals    *cdata     `xml:"Goals"`
	FullName *cdata     `xml:"FullName"`
	Major    *string    `xml:"Major"`
	Fields   *xmlFields `xml:"Fields"`
}

type xmlProjectVar struct {
	ID    string `xml:"ID"`
	Title *cdata `xml:"Title"`
	Desc  *cdata `xml:"Desc"`
	Tags  string `xml:"Tags,omitempty"`
}

type xmlScene struct {
	ID               string       `xml:"ID"`
	Title            *cdata       `xml:"Title"`
	Fields           *xmlFields   `xml:"Fields"`
	Desc             *cdata       `xml:"Desc"`
	Unused           *string      `xml:"Unused"`
	Status           string       `xml:"Status,omitempty"`
	SceneContent     *xmlContent  `xml:"SceneContent"`
	Notes            *cdata       `xml:"Notes"`
	Tags             *cdata       `xml:"Tags"`
	AppendToPrev     *string      `xml:"AppendToPrev"`
	SpecificDateTime string       `xml:"SpecificDateTime,omitempty"`
	SpecificDateMode string       `xml:"SpecificDateMode,omitempty"`
	Day              string       `xml:"Day,omitempty"`
	Hour             string       `xml:"Hour,omitempty"`
	Minute           string       `xml:"Minute,omitempty"`
	LastsDays        string       `xml:"LastsDays,omitempty"`
	LastsHours       string       `xml:"LastsHours,omitempty"`
	LastsMinutes     string       `xml:"LastsMinutes,omitempty"`
	ReactionScene    *string      `xml:"ReactionScene"`
	Goal             *cdata       `xml:"Goal"`
	Conflict         *cdata       `xml:"Conflict"`
	Outcome          *cdata       `xml:"Outcome"`
	Characters       *xmlCharRefs `xml:"Characters"`
	Locations        *xmlLocRefs  `xml:"Locations"`
	Items            *xmlItemRefs `xml:"Items"`
}

// Reference lists hold one child per ID. Text catches the delimited list
// some older files carry instead.
type xmlCharRefs struct {
	IDs  []string `xml:"CharID"`
	Text string   `xml:",chardata"`
}

type xmlLocRefs struct {
	IDs  []string `xml:"LocID"`
	Text string   `xml:",chardata"`
}

type xmlItemRefs struct {
	IDs  []string `xml:"ItemID"`
	Text string   `xml:",chardata"`
}

type xmlChapter struct {
	ID           string        `xml:"ID"`
	Title        *cdata        `xml:"Title"`
	Desc         *cdata        `xml:"Desc"`
	Unused       *string       `xml:"Unused"`
	Fields       *xmlFields    `xml:"Fields"`
	SectionStart *string       `xml:"SectionStart"`
	Type         string        `xml:"Type,omitempty"`
	ChapterType  string        `xml:"ChapterType,omitempty"`
	Scenes       *xmlSceneRefs `xml:"Scenes"`
}

type xmlSceneRefs struct {
	IDs []string `xml:"ScID"`
}

type xmlProjectNote struct {
	ID    string `xml:"ID"`
	Title *cdata `xml:"Title"`
	Desc  *cdata `xml:"Desc"`
}

type xmlWC struct {
	Date       string `xml:"Date"`
	Count      string `xml:"Count"`
	TotalCount string `xml:"TotalCount"`
}

// xmlField is one child of a Fields element.
type xmlField struct {
	Name  string
	Value string
	// CDATA writes the value as a CDATA section.
	CDATA bool
}

// xmlFields is a Fields element. Its children are named after the fields, so
// it cannot be described with struct tags.
type xmlFields struct {
	Items []xmlField
}

// Get returns the value of the named field.
func (f *xmlFields) Get(name string) (string, bool) {
	if f == nil {
		return "", false
	}
	for _, it := range f.Items {
		if it.Name == name {
			return it.Value, true
		}
	}
	return "", false
}

func (f *xmlFields) add(name, value string, asCDATA bool) {
	f.Items = append(f.Items, xmlField{Name: name, Value: value, CDATA: asCDATA})
}

// MarshalXML implements xml.Marshaler.
func (f xmlFields) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, it := range f.Items {
		el := xml.StartElement{Name: xml.Name{Local: it.Name}}
		var err error
		if it.CDATA {
			err = e.EncodeElement(cdata{Text: it.Value}, el)
		} else {
			err = e.EncodeElement(it.Value, el)
		}
		if err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML implements xml.Unmarshaler.
func (f *xmlFields) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			f.Items = append(f.Items, xmlField{Name: t.Name.Local, Value: value})
		case xml.EndElement:
			return nil
		}
	}
}

// xmlContent is SceneContent. It is written as CDATA. On read, HTML-style
// emphasis that older files carry as real elements is turned into
// shortcodes; other elements contribute their text.
type xmlContent struct {
	Text string `xml:",cdata"`
}

var contentElementCodes = map[string]string{
	"b":      "b",
	"strong": "b",
	"i":      "i",
	"em":     "i",
}

// UnmarshalXML implements xml.Unmarshaler.
func (c *xmlContent) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			depth++
			if code, ok := contentElementCodes[strings.ToLower(t.Name.Local)]; ok {
				sb.WriteString("[" + code + "]")
			}
		case xml.EndElement:
			if depth == 0 {
				c.Text = sb.String()
				return nil
			}
			depth--
			if code, ok := contentElementCodes[strings.ToLower(t.Name.Local)]; ok {
				sb.WriteString("[/" + code + "]")
			}
		}
	}
}

func passThroughCharset(_ string, r io.Reader) (io.Reader, error) {
	return r, nil
}
