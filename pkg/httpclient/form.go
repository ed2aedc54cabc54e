package httpclient

import (
	"fmt"
	"reflect"

	"github.com/spf13/cast"
)

// ToFormBody converts a JSON like map to a flat form body map, any value type
// is mapped to string. Slices become "key[0]", "key[1]", ... entries and
// string maps become "key[subkey]" entries.
func ToFormBody(in map[string]any) (out map[string]string) {
	out = make(map[string]string)
	for k, v := range in {
		ty := reflect.TypeOf(v)
		switch {
		case ty.Kind() == reflect.Slice:
			items := reflect.ValueOf(v)
			for i := 0; i < items.Len(); i++ {
				out[fmt.Sprintf("%s[%d]", k, i)] = castToString(items.Index(i).Interface())
			}
		case ty.Kind() == reflect.Map && ty.Key().Kind() == reflect.String:
			items := reflect.ValueOf(v)
			for _, key := range items.MapKeys() {
				out[fmt.Sprintf("%s[%s]", k, key.String())] = castToString(items.MapIndex(key).Interface())
			}
		default:
			out[k] = castToString(v)
		}
	}
	return out
}

func castToString(v any) string {
	out, err := cast.ToStringE(v)
	if err != nil {
		panic(fmt.Errorf(`cannot cast %T to string: %w`, v, err))
	}
	return out
}
