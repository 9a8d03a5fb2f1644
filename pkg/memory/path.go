package memory

import (
	"strconv"
	"strings"

	"github.com/sandrolain/goadaptive/pkg/types"
)

// Segment is one step of a path: a property name or an array index.
type Segment struct {
	Name    string
	Index   int64
	IsIndex bool
}

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.FormatInt(s.Index, 10) + "]"
	}
	return s.Name
}

// ParsePath splits a path such as `user.addresses[0].city` or
// `turn['key.with.dots']` into segments.
func ParsePath(path string) ([]Segment, error) {
	var segs []Segment
	i := 0
	for i < len(path) {
		switch path[i] {
		case '.':
			if i == 0 || i == len(path)-1 || path[i+1] == '.' || path[i+1] == '[' {
				return nil, invalidPath(path)
			}
			i++
		case '[':
			seg, n, ok := bracket(path[i:])
			if !ok {
				return nil, invalidPath(path)
			}
			segs = append(segs, seg)
			i += n
			if i < len(path) && path[i] != '.' && path[i] != '[' {
				return nil, invalidPath(path)
			}
		default:
			j := i
			for j < len(path) && path[j] != '.' && path[j] != '[' {
				j++
			}
			segs = append(segs, Segment{Name: path[i:j]})
			i = j
		}
	}
	return segs, nil
}

// bracket reads the `[...]` step at the start of s and returns its length.
// Inside a quoted name a backslash escapes the next character.
func bracket(s string) (Segment, int, bool) {
	j := skipSpaces(s, 1)
	if j < len(s) && (s[j] == '\'' || s[j] == '"') {
		q := s[j]
		var sb strings.Builder
		for j++; j < len(s); j++ {
			switch c := s[j]; {
			case c == '\\' && j+1 < len(s):
				j++
				sb.WriteByte(s[j])
			case c == q:
				k := skipSpaces(s, j+1)
				if k < len(s) && s[k] == ']' {
					return Segment{Name: sb.String()}, k + 1, true
				}
				return Segment{}, 0, false
			default:
				sb.WriteByte(c)
			}
		}
		return Segment{}, 0, false
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return Segment{}, 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s[1:end]), 10, 64)
	if err != nil {
		return Segment{}, 0, false
	}
	return Segment{Index: n, IsIndex: true}, end + 1, true
}

func skipSpaces(s string, i int) int {
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return i
}

var nameEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// JoinPath appends a property name to a path. Names that path syntax would
// split are written in quoted brackets.
func JoinPath(path, name string) string {
	if name == "" || strings.ContainsAny(name, ".[]") {
		return path + "['" + nameEscaper.Replace(name) + "']"
	}
	if path == "" {
		return name
	}
	return path + "." + name
}

// JoinIndex appends an array index to a path.
func JoinIndex(path string, index int64) string {
	return path + "[" + strconv.FormatInt(index, 10) + "]"
}

func invalidPath(path string) error {
	return types.NewError(types.ErrInvalidPath, "%q is not a valid path", path)
}
