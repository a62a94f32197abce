package milp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const lpLineWidth = 200

// WriteLP writes m in CPLEX LP format. Variable and constraint names are
// sanitised to the LP character set and made unique.
func WriteLP(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)
	names := lpNames(m)

	fmt.Fprintf(bw, "\\ Model %s\n", m.Name)
	fmt.Fprintf(bw, "\\ %s\n", m.Stats())
	bw.WriteString("Minimize\n")
	obj := m.objective.Normalized()
	writeRow(bw, " obj:", obj, names)
	if obj.Constant != 0 {
		// LP has no objective constant; record it for readers.
		fmt.Fprintf(bw, "\\ objective constant %s\n", lpNum(obj.Constant))
	}
	bw.WriteByte('\n')

	bw.WriteString("Subject To\n")
	rowNames := newNamer("c")
	for i, c := range m.constraints {
		e := c.Expr.Normalized()
		rhs := c.RHS - e.Constant
		label := rowNames.name(c.Name, i)
		if len(e.Terms) == 0 && len(m.vars) > 0 {
			e.Terms = []Term{{Var: 0, Coef: 0}}
		}
		writeRow(bw, " "+label+":", e, names)
		fmt.Fprintf(bw, "   %s %s\n", c.Sense, lpNum(rhs))
	}

	bw.WriteString("Bounds\n")
	var binaries []string
	for i, v := range m.vars {
		name := names[i]
		if v.Kind == Binary {
			binaries = append(binaries, name)
			if v.Lower == v.Upper {
				fmt.Fprintf(bw, " %s = %s\n", name, lpNum(v.Lower))
			}
			continue
		}
		switch {
		case v.Lower == v.Upper:
			fmt.Fprintf(bw, " %s = %s\n", name, lpNum(v.Lower))
		case v.Lower == 0 && math.IsInf(v.Upper, 1):
		case v.Lower == 0:
			fmt.Fprintf(bw, " %s <= %s\n", name, lpNum(v.Upper))
		default:
			fmt.Fprintf(bw, " %s <= %s <= %s\n", lpNum(v.Lower), name, lpNum(v.Upper))
		}
	}

	if len(binaries) > 0 {
		bw.WriteString("Binaries\n")
		line := ""
		for _, b := range binaries {
			if len(line)+len(b)+1 > lpLineWidth {
				bw.WriteString(line + "\n")
				line = ""
			}
			line += " " + b
		}
		if line != "" {
			bw.WriteString(line + "\n")
		}
	}
	bw.WriteString("End\n")
	return bw.Flush()
}

func writeRow(bw *bufio.Writer, label string, e Expr, names []string) {
	line := label
	for i, t := range e.Terms {
		coef := t.Coef
		sign := "+"
		if coef < 0 {
			sign = "-"
			coef = -coef
		}
		var piece string
		if i == 0 && sign == "+" {
			piece = fmt.Sprintf(" %s %s", lpNum(coef), names[t.Var])
		} else {
			piece = fmt.Sprintf(" %s %s %s", sign, lpNum(coef), names[t.Var])
		}
		if len(line)+len(piece) > lpLineWidth {
			bw.WriteString(line + "\n")
			line = "  "
		}
		line += piece
	}
	if len(e.Terms) == 0 {
		line += " 0"
	}
	bw.WriteString(line + "\n")
}

func lpNum(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func lpNames(m *Model) []string {
	n := newNamer("x")
	out := make([]string, len(m.vars))
	for i, v := range m.vars {
		out[i] = n.name(v.Name, i)
	}
	return out
}

type namer struct {
	prefix string
	used   map[string]bool
}

func newNamer(prefix string) *namer {
	return &namer{prefix: prefix, used: make(map[string]bool)}
}

// name returns a unique LP-safe identifier for raw, falling back to
// prefix+index when raw is empty. Duplicates get the first free "#k"
// suffix, checked against every name issued so far, so a raw name that
// already looks like "base#2" is itself suffixed rather than shadowed.
func (n *namer) name(raw string, idx int) string {
	s := sanitizeLP(raw)
	if s == "" {
		s = n.prefix + strconv.Itoa(idx)
	}
	base := s
	for k := 2; n.used[s]; k++ {
		s = fmt.Sprintf("%s#%d", base, k)
	}
	n.used[s] = true
	return s
}

// sanitizeLP maps a name onto the LP identifier alphabet. Accented letters
// lose their accent; anything else outside the alphabet becomes '_'.
func sanitizeLP(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case strings.ContainsRune("!\"#$%&()/,.;?@_`'{}|~", r):
			b.WriteRune(r)
		default:
			if base, ok := accentFold[r]; ok {
				b.WriteRune(base)
			} else {
				b.WriteByte('_')
			}
		}
	}
	s := b.String()
	if s != "" && (unicode.IsDigit(rune(s[0])) || s[0] == '.') {
		s = "_" + s
	}
	return s
}

var accentFold = map[rune]rune{
	'á': 'a', 'é': 'e', 'í': 'i', 'ó': 'o', 'ú': 'u', 'ü': 'u', 'ñ': 'n',
	'Á': 'A', 'É': 'E', 'Í': 'I', 'Ó': 'O', 'Ú': 'U', 'Ü': 'U', 'Ñ': 'N',
}
