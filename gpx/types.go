package gpx

import "encoding/xml"

// File is a GPX document as read. Element names are matched without regard
// to namespace, so GPX 1.0 and 1.1 documents decode alike.
type File struct {
	XMLName xml.Name `xml:"gpx"`
	Version string   `xml:"version,attr"`
	Creator string   `xml:"creator,attr"`
	Tracks  []Track  `xml:"trk"`
}

type Track struct {
	Name     string    `xml:"name"`
	Segments []Segment `xml:"trkseg"`
}

type Segment struct {
	Points []Point `xml:"trkpt"`
}

// Point keeps raw text so that parse failures can name the bad field.
type Point struct {
	Lat        string      `xml:"lat,attr"`
	Lon        string      `xml:"lon,attr"`
	Ele        *string     `xml:"ele"`
	Time       string      `xml:"time"`
	Speed      *string     `xml:"speed"`
	HDOP       *string     `xml:"hdop"`
	Extensions *Extensions `xml:"extensions"`
}

// Extensions holds the fields the custom converters place in <extensions>.
type Extensions struct {
	Speed *string `xml:"speed"`
	HDOP  *string `xml:"hdop"`
}

const (
	Namespace      = "http://www.topografix.com/GPX/1/1"
	XSINamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	SchemaLocation = "http://www.topografix.com/GPX/1/1 http://www.topografix.com/GPX/1/1/gpx.xsd"
)

type outFile struct {
	XMLName   xml.Name    `xml:"gpx"`
	Version   string      `xml:"version,attr"`
	Creator   string      `xml:"creator,attr"`
	XMLNS     string      `xml:"xmlns,attr"`
	XMLNSXSI  string      `xml:"xmlns:xsi,attr"`
	SchemaLoc string      `xml:"xsi:schemaLocation,attr"`
	Metadata  outMetadata `xml:"metadata"`
	Track     outTrack    `xml:"trk"`
}

type outMetadata struct {
	Name string `xml:"name,omitempty"`
	Time string `xml:"time,omitempty"`
}

type outTrack struct {
	Name    string     `xml:"name,omitempty"`
	Segment outSegment `xml:"trkseg"`
}

type outSegment struct {
	Points []outPoint `xml:"trkpt"`
}

type outPoint struct {
	Lat        string         `xml:"lat,attr"`
	Lon        string         `xml:"lon,attr"`
	Ele        string         `xml:"ele,omitempty"`
	Time       string         `xml:"time"`
	Extensions *outExtensions `xml:"extensions,omitempty"`
}

type outExtensions struct {
	Speed string `xml:"speed,omitempty"`
	HDOP  string `xml:"hdop,omitempty"`
}
