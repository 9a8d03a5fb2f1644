package evaluator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sandrolain/goadaptive/pkg/compare"
	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/types"
)

func stringFunctions() []*FunctionDef {
	var defs []*FunctionDef
	defs = append(defs, aliases(&FunctionDef{
		Name:       "concat",
		ReturnType: types.ReturnString | types.ReturnArray,
		Validate:   validateAtLeast(1),
		Evaluate:   apply(fnConcat, nil),
	}, "&")...)
	defs = append(defs,
		newFunction("length", "<s:n>", apply(func(args []interface{}) interface{} {
			return int64(utf8.RuneCountInString(optString(args[0])))
		}, verifyStringOrNull)),
		newFunction("toLower", "<s-s?:s>", applyWithState(fnToLower, verifyStringOrNull)),
		newFunction("toUpper", "<s-s?:s>", applyWithState(fnToUpper, verifyStringOrNull)),
		newFunction("trim", "<s:s>", apply(func(args []interface{}) interface{} {
			return strings.TrimSpace(optString(args[0]))
		}, verifyStringOrNull)),
		newFunction("replace", "<s-s-s:s>", applyWithError(fnReplace, verifyStringOrNull)),
		newFunction("replaceIgnoreCase", "<s-s-s:s>", applyWithError(fnReplaceIgnoreCase, verifyStringOrNull)),
		newFunction("split", "<s-s?:a>", apply(fnSplit, verifyStringOrNull)),
		newFunction("substring", "<s-n-n?:s>", applyWithError(fnSubstring, verifySubstringArg)),
		newFunction("startsWith", "<s-s:b>", apply(func(args []interface{}) interface{} {
			return strings.HasPrefix(optString(args[0]), optString(args[1]))
		}, verifyStringOrNull)),
		newFunction("endsWith", "<s-s:b>", apply(func(args []interface{}) interface{} {
			return strings.HasSuffix(optString(args[0]), optString(args[1]))
		}, verifyStringOrNull)),
		newFunction("indexOf", "<(sa)-x:n>", applyWithError(fnIndexOf, nil)),
		newFunction("lastIndexOf", "<(sa)-x:n>", applyWithError(fnLastIndexOf, nil)),
		newFunction("newGuid", "<:s>", apply(func([]interface{}) interface{} {
			return uuid.NewString()
		}, nil)),
		newFunction("formatNumber", "<n-n-s?:s>", applyWithState(fnFormatNumber, nil)),
	)
	return defs
}

// optString treats undefined and null as the empty string.
func optString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// fnConcat concatenates arrays when every argument is an array, and the
// string forms of the arguments otherwise.
func fnConcat(args []interface{}) interface{} {
	allLists := true
	for _, arg := range args {
		if types.KindOf(arg) != types.KindArray {
			allLists = false
			break
		}
	}
	if allLists {
		var out []interface{}
		for _, arg := range args {
			list, _ := types.ToList(arg)
			out = append(out, list...)
		}
		if out == nil {
			out = []interface{}{}
		}
		return out
	}
	var sb strings.Builder
	for _, arg := range args {
		sb.WriteString(stringify(arg))
	}
	return sb.String()
}

// localeOf returns the locale argument at i, or the evaluation locale.
func localeOf(s *State, args []interface{}, i int, fallback language.Tag) (language.Tag, error) {
	name := s.Options().Locale
	if i < len(args) && args[i] != nil {
		str, ok := args[i].(string)
		if !ok {
			return language.Und, types.NewError(types.ErrTypeMismatch, "locale %v is not a string", args[i])
		}
		name = str
	}
	if name == "" {
		return fallback, nil
	}
	tag, err := language.Parse(name)
	if err != nil {
		return language.Und, types.NewError(types.ErrInvalidRange, "%q is not a valid locale", name).WithCause(err)
	}
	return tag, nil
}

func fnToLower(s *State, _ memory.Memory, args []interface{}) (interface{}, error) {
	tag, err := localeOf(s, args, 1, language.Und)
	if err != nil {
		return nil, err
	}
	return cases.Lower(tag).String(optString(args[0])), nil
}

func fnToUpper(s *State, _ memory.Memory, args []interface{}) (interface{}, error) {
	tag, err := localeOf(s, args, 1, language.Und)
	if err != nil {
		return nil, err
	}
	return cases.Upper(tag).String(optString(args[0])), nil
}

func fnReplace(args []interface{}) (interface{}, error) {
	old := optString(args[1])
	if old == "" {
		return nil, types.NewError(types.ErrInvalidRange, "%q should be a string with length at least 1", old)
	}
	return strings.ReplaceAll(optString(args[0]), old, optString(args[2])), nil
}

func fnReplaceIgnoreCase(args []interface{}) (interface{}, error) {
	old := optString(args[1])
	if old == "" {
		return nil, types.NewError(types.ErrInvalidRange, "%q should be a string with length at least 1", old)
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(old))
	return re.ReplaceAllLiteralString(optString(args[0]), optString(args[2])), nil
}

// fnSplit splits on a separator, or into characters when the separator is
// empty or omitted.
func fnSplit(args []interface{}) interface{} {
	sep := ""
	if len(args) > 1 {
		sep = optString(args[1])
	}
	parts := strings.Split(optString(args[0]), sep)
	out := make([]interface{}, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out
}

func verifySubstringArg(value interface{}, child *types.Node) error {
	if types.IsNull(value) || types.KindOf(value) == types.KindString {
		return nil
	}
	return verifyInteger(value, child)
}

// fnSubstring takes a start index and an optional length, in characters.
func fnSubstring(args []interface{}) (interface{}, error) {
	if !types.IsNull(args[0]) && types.KindOf(args[0]) != types.KindString {
		return nil, types.NewError(types.ErrTypeMismatch, "%v is not a string.", args[0])
	}
	runes := []rune(optString(args[0]))
	start, ok := types.ToInt64(args[1])
	if !ok || start < 0 || start > int64(len(runes)) {
		return nil, types.NewError(types.ErrInvalidRange, "%v is not a valid start index for a string of length %d", args[1], len(runes))
	}
	end := int64(len(runes))
	if len(args) > 2 {
		length, ok := types.ToInt64(args[2])
		if !ok || length < 0 || length > end-start {
			return nil, types.NewError(types.ErrInvalidRange, "%v is not a valid length", args[2])
		}
		end = start + length
	}
	return string(runes[start:end]), nil
}

func fnIndexOf(args []interface{}) (interface{}, error) {
	return indexIn(args, false)
}

func fnLastIndexOf(args []interface{}) (interface{}, error) {
	return indexIn(args, true)
}

// indexIn finds a substring (character index) or an equal list element.
func indexIn(args []interface{}, last bool) (interface{}, error) {
	if types.IsNull(args[0]) {
		return int64(-1), nil
	}
	if str, ok := args[0].(string); ok {
		sub, ok := args[1].(string)
		if !ok && !types.IsNull(args[1]) {
			return nil, types.NewError(types.ErrTypeMismatch, "%v is not a string.", args[1])
		}
		var i int
		if last {
			i = strings.LastIndex(str, sub)
		} else {
			i = strings.Index(str, sub)
		}
		if i < 0 {
			return int64(-1), nil
		}
		return int64(utf8.RuneCountInString(str[:i])), nil
	}
	list, ok := types.ToList(args[0])
	if !ok {
		return nil, types.NewError(types.ErrTypeMismatch, "%v is neither a list nor a string.", args[0])
	}
	if last {
		for i := len(list) - 1; i >= 0; i-- {
			if compare.IsEqual(list[i], args[1]) {
				return int64(i), nil
			}
		}
		return int64(-1), nil
	}
	for i, item := range list {
		if compare.IsEqual(item, args[1]) {
			return int64(i), nil
		}
	}
	return int64(-1), nil
}

// fnFormatNumber rounds half away from zero to a fixed number of fraction
// digits and formats the result for a locale, en-US by default.
func fnFormatNumber(s *State, _ memory.Memory, args []interface{}) (interface{}, error) {
	if !types.IsNumber(args[0]) {
		return nil, types.NewError(types.ErrTypeMismatch, "formatNumber first argument %v must be a number", args[0])
	}
	digits, ok := types.ToInt64(args[1])
	if !ok || digits < 0 || digits > 20 {
		return nil, types.NewError(types.ErrInvalidRange, "formatNumber precision %v must be an integer between 0 and 20", args[1])
	}
	tag, err := localeOf(s, args, 2, language.AmericanEnglish)
	if err != nil {
		return nil, err
	}
	d, err := roundDecimal(args[0], int32(digits))
	if err != nil {
		return nil, err
	}
	f, _ := d.Float64()
	p := message.NewPrinter(tag)
	n := int(digits)
	return p.Sprint(number.Decimal(f, number.MinFractionDigits(n), number.MaxFractionDigits(n))), nil
}
