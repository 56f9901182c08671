package apicall

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
)

// buildQuery encodes data the way PHP's http_build_query does: nested maps become
// a[b]=v, slices become a[0]=v, booleans become 1 or 0 and nil values are dropped.
// Keys come out sorted.
func buildQuery(data map[string]any) string {
	values := url.Values{}
	for key, value := range data {
		flattenQueryValue(values, key, value)
	}
	return values.Encode()
}

func flattenQueryValue(values url.Values, key string, value any) {
	switch v := value.(type) {
	case nil:
	case map[string]any:
		for k, nested := range v {
			flattenQueryValue(values, key+"["+k+"]", nested)
		}
	case map[string]string:
		for k, nested := range v {
			values.Add(key+"["+k+"]", nested)
		}
	case []any:
		for i, nested := range v {
			flattenQueryValue(values, key+"["+strconv.Itoa(i)+"]", nested)
		}
	case []string:
		for i, nested := range v {
			values.Add(key+"["+strconv.Itoa(i)+"]", nested)
		}
	case bool:
		if v {
			values.Add(key, "1")
		} else {
			values.Add(key, "0")
		}
	case string:
		values.Add(key, v)
	default:
		flattenReflectValue(values, key, reflect.ValueOf(v))
	}
}

// flattenReflectValue handles typed collections such as []int, map[string]int or
// []map[string]any that the fast paths above do not match.
func flattenReflectValue(values url.Values, key string, rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return
		}
		flattenQueryValue(values, key, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return
		}
		for i := 0; i < rv.Len(); i++ {
			flattenQueryValue(values, key+"["+strconv.Itoa(i)+"]", rv.Index(i).Interface())
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			flattenQueryValue(values, key+"["+fmt.Sprint(iter.Key().Interface())+"]", iter.Value().Interface())
		}
	default:
		values.Add(key, fmt.Sprint(rv.Interface()))
	}
}
