package docx

import "encoding/xml"

// stylesXML represents the structure of word/styles.xml
type stylesXML struct {
	XMLName     xml.Name       `xml:"styles"`
	DocDefaults docDefaultsXML `xml:"docDefaults"`
	Styles      []styleDefXML  `xml:"style"`
}

// docDefaultsXML represents document default styles.
type docDefaultsXML struct {
	RPrDefault rPrDefaultXML `xml:"rPrDefault"`
}

// rPrDefaultXML represents default run properties.
type rPrDefaultXML struct {
	RPr runPropsXML `xml:"rPr"`
}

// styleDefXML represents a style definition.
type styleDefXML struct {
	Type    string            `xml:"type,attr"` // paragraph, character, table, numbering
	StyleID string            `xml:"styleId,attr"`
	Default string            `xml:"default,attr"` // "1" if default style
	Name    valXML            `xml:"name"`
	BasedOn valXML            `xml:"basedOn"`
	PPr     paragraphPropsXML `xml:"pPr"`
	RPr     runPropsXML       `xml:"rPr"`
}

// relationshipsXML represents _rels/*.rels files
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML represents a single relationship.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"` // External or empty (internal)
}
