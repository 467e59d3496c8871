package tools

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"

	"github.com/modern-go/reflect2"
)

// FnObj wraps a struct-tag visitor so DoTagFunc can run a chain of them
// over every field of v without the caller building closures each time.
type FnObj struct {
	Fn func(structField reflect.StructField, vValue reflect.Value) error
}

// DoTagFunc walks the fields of v, a pointer or interface to a struct,
// and runs every fn in order against each field.
func DoTagFunc(v interface{}, fn []FnObj) error {
	if reflect2.IsNil(v) {
		return nil
	}

	vType := reflect2.TypeOf(v)
	vType1 := vType.Type1()

	switch vType1.Kind() {
	case reflect.Interface, reflect.Ptr:
	default:
		return nil
	}

	indirect := reflect.Indirect(reflect.ValueOf(v))
	for i := 0; i < indirect.NumField(); i++ {
		field := indirect.Field(i)
		fieldStruct := vType1.Elem().Field(i)

		for _, f := range fn {
			if err := f.Fn(fieldStruct, field); err != nil {
				return err
			}
		}
	}

	return nil
}

// SetDefaultValueIfNil fills a zero-valued field from its `default` tag.
// Struct and pointer-to-struct fields recurse so nested config blocks get
// defaulted too.
func SetDefaultValueIfNil(structField reflect.StructField, vValue reflect.Value) error {
	if !vValue.CanSet() {
		return nil
	}
	structTag := structField.Tag
	if containTag(structTag, "default") || vValue.Kind() == reflect.Struct || vValue.Kind() == reflect.Ptr {
		switch vValue.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if vValue.Int() == 0 {
				v, _ := strconv.ParseInt(structTag.Get("default"), 10, 64)
				vValue.SetInt(v)
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if vValue.Uint() == 0 {
				v, _ := strconv.ParseUint(structTag.Get("default"), 10, 64)
				vValue.SetUint(v)
			}
		case reflect.String:
			if vValue.String() == "" {
				vValue.SetString(structTag.Get("default"))
			}
		case reflect.Float32, reflect.Float64:
			if vValue.Float() == 0 {
				v, _ := strconv.ParseFloat(structTag.Get("default"), 64)
				vValue.SetFloat(v)
			}
		case reflect.Struct:
			t := structField.Type
			for i := 0; i < t.NumField(); i++ {
				fieldStruct := t.Field(i)
				if err := SetDefaultValueIfNil(fieldStruct, vValue.Field(i)); err != nil {
					return err
				}
			}
		case reflect.Ptr:
			wasNil := vValue.IsNil()
			if wasNil {
				vValue.Set(reflect.New(structField.Type.Elem()))
			}
			pValue := vValue.Elem()
			pType := structField.Type.Elem()
			if pType.Kind() == reflect.Struct {
				for i := 0; i < pValue.NumField(); i++ {
					fieldStruct := pType.Field(i)
					if err := SetDefaultValueIfNil(fieldStruct, pValue.Field(i)); err != nil {
						return err
					}
				}
			} else if pType.Kind() == reflect.Bool {
				// A nil *bool is unambiguous, unlike a plain false bool.
				if wasNil && containTag(structTag, "default") {
					v, _ := strconv.ParseBool(structTag.Get("default"))
					pValue.SetBool(v)
				}
			} else if containTag(structTag, "default") {
				return SetDefaultValueIfNil(reflect.StructField{Tag: structTag, Type: pType}, pValue)
			}
		case reflect.Bool:
			fmt.Println("bool can't use Func[SetDefaultValueIfNil]")
		default:
		}
	}
	return nil
}

func containTag(tag reflect.StructTag, tagName string) bool {
	return regexp.MustCompile(`\b`+tagName+`\b`).Match([]byte(tag))
}
