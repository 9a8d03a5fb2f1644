package evaluator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/sandrolain/goadaptive/pkg/compare"
	"github.com/sandrolain/goadaptive/pkg/treeio"
	"github.com/sandrolain/goadaptive/pkg/types"
)

func convertFunctions() []*FunctionDef {
	return []*FunctionDef{
		newFunction("int", "<x:n>", applyWithError(fnInt, verifyNotNull)),
		newFunction("float", "<x:n>", applyWithError(fnFloat, verifyNotNull)),
		newFunction("string", "<x:s>", apply(func(args []interface{}) interface{} {
			return stringify(args[0])
		}, nil)),
		newFunction("bool", "<x:b>", apply(fnBool, nil)),
		newFunction("json", "<s:o>", applyWithError(fnJSON, verifyString)),
		newFunction("jsonStringify", "<x:s>", applyWithError(func(args []interface{}) (interface{}, error) {
			return encodeJSON(args[0])
		}, nil)),
	}
}

// isoLayout is the timestamp format produced by the date/time functions.
const isoLayout = "2006-01-02T15:04:05.000Z"

// stringify renders a value the way string conversion and concatenation
// do: undefined and null are empty, arrays and mappings are JSON.
func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil, types.Null:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return formatFloat(val)
	case *big.Int:
		return val.String()
	case time.Time:
		return val.UTC().Format(isoLayout)
	}
	switch types.KindOf(v) {
	case types.KindInteger, types.KindFloat, types.KindBigInt:
		return stringify(types.Normalize(v))
	case types.KindArray, types.KindObject:
		s, err := encodeJSON(v)
		if err == nil {
			return s
		}
	case types.KindDateTime:
		t, _ := compare.ToTime(v)
		return stringify(t)
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	abs := math.Abs(f)
	if f == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func encodeJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", types.NewError(types.ErrTypeMismatch, "%v cannot be converted to JSON", v).WithCause(err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func fnInt(args []interface{}) (interface{}, error) {
	switch v := args[0].(type) {
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		if b, ok := new(big.Int).SetString(s, 10); ok {
			return b, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return integral(math.Trunc(f)), nil
		}
		return nil, types.NewError(types.ErrTypeMismatch, "parameter %q must be a number", v)
	}
	if !types.IsNumber(args[0]) {
		return nil, types.NewError(types.ErrTypeMismatch, "%v cannot be converted to an integer", args[0])
	}
	if isFloatOperand(args[0]) {
		f, _ := types.ToFloat(args[0])
		return integral(math.Trunc(f)), nil
	}
	return args[0], nil
}

func fnFloat(args []interface{}) (interface{}, error) {
	if s, ok := args[0].(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, types.NewError(types.ErrTypeMismatch, "parameter %q must be a number", s).WithCause(err)
		}
		return f, nil
	}
	f, ok := types.ToFloat(args[0])
	if !ok {
		return nil, types.NewError(types.ErrTypeMismatch, "%v cannot be converted to a float", args[0])
	}
	return f, nil
}

// fnBool is logic truth, except that numbers are true when non-zero.
func fnBool(args []interface{}) interface{} {
	if types.IsNumber(args[0]) {
		return !isZero(args[0])
	}
	return compare.IsLogicTrue(args[0])
}

func fnJSON(args []interface{}) (interface{}, error) {
	data := []byte(args[0].(string))
	if !json.Valid(data) {
		return nil, types.NewError(types.ErrTypeMismatch, "%q is not valid JSON", args[0])
	}
	v, err := treeio.DecodeValue(data)
	if err != nil {
		return nil, types.NewError(types.ErrTypeMismatch, "%q is not valid JSON", args[0]).WithCause(err)
	}
	return v, nil
}
