package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ErrStructure marks a log whose header, footer or declarations do not match
// the expected layout. Such a match is skipped, never partially reported.
var ErrStructure = errors.New("malformed battle log")

// battleLogClass is the class of the <script> element holding the protocol
// log inside an exported replay page.
const battleLogClass = "battle-log-data"

// Input formats accepted by Options.Format.
const (
	FormatAuto = "auto"
	FormatHTML = "html"
	FormatLog  = "log"
)

func extractAs(data []byte, format string) (string, error) {
	switch format {
	case "", FormatAuto:
		return ExtractLog(data)
	case FormatLog:
		return string(data), nil
	case FormatHTML:
		if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("<")) {
			return "", fmt.Errorf("%w: expected an html replay page", ErrStructure)
		}
		return ExtractLog(data)
	}
	return "", fmt.Errorf("unknown input format %q", format)
}

// ExtractLog returns the raw protocol text of a replay. HTML pages are
// searched for the battle-log script; anything else is taken as a plain
// protocol dump.
func ExtractLog(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if !bytes.HasPrefix(trimmed, []byte("<")) {
		return string(data), nil
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	var script *html.Node
	var fallback *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if script != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" {
			if hasClass(n, battleLogClass) {
				script = n
				return
			}
			if fallback == nil && strings.Contains(nodeText(n), "|gametype|") {
				fallback = n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if script == nil {
		script = fallback
	}
	if script == nil {
		return "", fmt.Errorf("%w: no battle log script in page", ErrStructure)
	}
	return nodeText(script), nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

// ExtractBattleBody strips the header and footer of a protocol log. The body
// starts after the |gametype| line and ends at the |win| or |tie| line
// (inclusive), or at the end of the log. Join and chat lines from the header
// and footer are kept around the body. This is the only place that knows the layout
// around the battle.
func ExtractBattleBody(log string) ([]string, error) {
	lines := strings.Split(strings.ReplaceAll(log, "\r\n", "\n"), "\n")
	start := -1
	for i, l := range lines {
		if strings.HasPrefix(l, "|gametype|") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: missing |gametype| header", ErrStructure)
	}
	end := len(lines)
	for i := start; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "|win|") || lines[i] == "|tie" || strings.HasPrefix(lines[i], "|tie|") {
			end = i + 1
			break
		}
	}
	var body []string
	for _, l := range lines[:start] {
		if headerSocial(l) {
			body = append(body, l)
		}
	}
	for _, l := range lines[start:end] {
		l = strings.TrimRight(l, " \t")
		if l == "" || l == "|" {
			continue
		}
		body = append(body, l)
	}
	for _, l := range lines[end:] {
		if headerSocial(l) {
			body = append(body, l)
		}
	}
	return body, nil
}

func headerSocial(l string) bool {
	for _, p := range []string{"|j|", "|J|", "|join|", "|c|", "|c:|", "|chat|"} {
		if strings.HasPrefix(l, p) {
			return true
		}
	}
	return false
}
