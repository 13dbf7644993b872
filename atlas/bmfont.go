package atlas

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Descriptor is a parsed BMFont metrics document: the atlas-wide
// metrics plus one glyph record per character.
type Descriptor struct {
	Metrics Metrics
	Glyphs  []Glyph
}

// ParseDescriptor parses a BMFont metrics document. Both the classic
// text format ("info ... / common ... / char ..." lines) and the JSON
// format are accepted; the format is sniffed from the first non-space
// byte.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, ErrEmptyDescriptor
	}
	if trimmed[0] == '{' {
		return parseJSONDescriptor(trimmed)
	}
	return parseTextDescriptor(data)
}

// ---- Text format ----

// parseTextDescriptor parses the classic line-oriented BMFont format.
func parseTextDescriptor(data []byte) (*Descriptor, error) {
	desc := &Descriptor{}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Split(bufio.ScanLines)

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "info"):
			parseInfoLine(line, &desc.Metrics)
		case strings.HasPrefix(line, "common"):
			parseCommonLine(line, &desc.Metrics)
		case strings.HasPrefix(line, "chars"): // count line, unused
			continue
		case strings.HasPrefix(line, "char"):
			desc.Glyphs = append(desc.Glyphs, parseCharLine(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("atlas: scan descriptor: %w", err)
	}
	if desc.Metrics.ScaleW == 0 || desc.Metrics.ScaleH == 0 {
		return nil, ErrMissingCommonBlock
	}
	return desc, nil
}

// parseInfoLine extracts face, size and charset from an info tag.
func parseInfoLine(line string, m *Metrics) {
	faceField := false
	for _, field := range strings.Fields(line) {
		fv := strings.SplitN(field, "=", 2)
		if len(fv) < 2 {
			if faceField {
				// Continuation of a quoted font name with spaces.
				m.Face += " " + strings.Trim(field, "\"")
			}
			continue
		}
		switch fv[0] {
		case "face":
			m.Face = strings.Trim(fv[1], "\"")
			faceField = true
		case "size":
			m.Size = parseNum(fv[1])
			faceField = false
		case "charset":
			m.Charset = strings.Trim(fv[1], "\"")
			faceField = false
		default:
			faceField = false
		}
	}
}

// parseCommonLine extracts lineHeight, scaleW and scaleH from a common tag.
func parseCommonLine(line string, m *Metrics) {
	for _, field := range strings.Fields(line) {
		fv := strings.SplitN(field, "=", 2)
		if len(fv) < 2 {
			continue
		}
		switch fv[0] {
		case "lineHeight":
			m.LineHeight = parseNum(fv[1])
		case "scaleW":
			m.ScaleW = int(parseNum(fv[1]))
		case "scaleH":
			m.ScaleH = int(parseNum(fv[1]))
		}
	}
}

// parseCharLine extracts one glyph record from a char tag.
func parseCharLine(line string) Glyph {
	var g Glyph
	for _, field := range strings.Fields(line) {
		fv := strings.SplitN(field, "=", 2)
		if len(fv) < 2 {
			continue
		}
		val := parseNum(fv[1])
		switch fv[0] {
		case "id":
			g.ID = rune(int32(val))
		case "x":
			g.X = val
		case "y":
			g.Y = val
		case "width":
			g.Width = val
		case "height":
			g.Height = val
		case "xoffset":
			g.XOffset = val
		case "yoffset":
			g.YOffset = val
		case "xadvance":
			g.XAdvance = val
		}
	}
	return g
}

// parseNum parses a BMFont numeric field. Malformed values read as 0,
// matching the lenient behavior of common BMFont consumers.
func parseNum(s string) float64 {
	v, err := strconv.ParseFloat(strings.Trim(s, "\""), 64)
	if err != nil {
		return 0
	}
	return v
}

// ---- JSON format ----

// jsonDescriptor mirrors the BMFont JSON document layout.
type jsonDescriptor struct {
	Info struct {
		Face    string          `json:"face"`
		Size    float64         `json:"size"`
		Charset json.RawMessage `json:"charset"` // string or []string
	} `json:"info"`
	Common struct {
		LineHeight float64 `json:"lineHeight"`
		ScaleW     int     `json:"scaleW"`
		ScaleH     int     `json:"scaleH"`
	} `json:"common"`
	Chars []jsonChar `json:"chars"`
}

type jsonChar struct {
	ID       int32   `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	XOffset  float64 `json:"xoffset"`
	YOffset  float64 `json:"yoffset"`
	XAdvance float64 `json:"xadvance"`
}

// parseJSONDescriptor parses the BMFont JSON format.
func parseJSONDescriptor(data []byte) (*Descriptor, error) {
	var jd jsonDescriptor
	if err := json.Unmarshal(data, &jd); err != nil {
		return nil, fmt.Errorf("atlas: decode JSON descriptor: %w", err)
	}
	if jd.Common.ScaleW == 0 || jd.Common.ScaleH == 0 {
		return nil, ErrMissingCommonBlock
	}

	desc := &Descriptor{
		Metrics: Metrics{
			ScaleW:     jd.Common.ScaleW,
			ScaleH:     jd.Common.ScaleH,
			LineHeight: jd.Common.LineHeight,
			Size:       jd.Info.Size,
			Face:       jd.Info.Face,
			Charset:    decodeCharset(jd.Info.Charset),
		},
		Glyphs: make([]Glyph, 0, len(jd.Chars)),
	}
	for _, c := range jd.Chars {
		desc.Glyphs = append(desc.Glyphs, Glyph{
			ID:       rune(c.ID),
			X:        c.X,
			Y:        c.Y,
			Width:    c.Width,
			Height:   c.Height,
			XOffset:  c.XOffset,
			YOffset:  c.YOffset,
			XAdvance: c.XAdvance,
		})
	}
	return desc, nil
}

// decodeCharset handles the two charset encodings found in the wild:
// a plain string, or an array of single-character strings.
func decodeCharset(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "")
	}
	return ""
}
