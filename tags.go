package stdresp

import (
	"reflect"
	"strings"
)

// hasParamTags reports whether the given type has any fields with
// parameter binding tags (path, query, header, cookie).
func hasParamTags(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		for _, src := range paramSources {
			if f.Tag.Get(src.tag) != "" {
				return true
			}
		}
	}
	return false
}

// hasInjectedField reports whether the given type has a *Params or
// RawRequest field the framework fills in.
func hasInjectedField(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := range t.NumField() {
		switch t.Field(i).Type {
		case reflect.TypeFor[*Params](), reflect.TypeFor[RawRequest]():
			return true
		}
	}
	return false
}

// hasBodyField reports whether the given type has an exported "Body" field.
func hasBodyField(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	_, ok := t.FieldByName("Body")
	return ok
}

// tagOptions splits a struct tag value on comma and returns
// the name and remaining options.
func tagOptions(tag string) (string, string) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, opts
}
