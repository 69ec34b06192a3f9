// Copyright (C) 2022  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package binstruct

import (
	"encoding"
	"fmt"
	"reflect"
)

// Marshaler is the interface a field type can implement to control its
// own wire encoding; satisfied by binint.U8 and binint.U32le.
type Marshaler = encoding.BinaryMarshaler

func Marshal(obj any) ([]byte, error) {
	if mar, ok := obj.(Marshaler); ok {
		dat, err := mar.MarshalBinary()
		if err != nil {
			err = &MarshalError{Type: reflect.TypeOf(obj), Err: err}
		}
		return dat, err
	}
	return marshalWithoutInterface(obj)
}

func marshalWithoutInterface(obj any) ([]byte, error) {
	val := reflect.ValueOf(obj)
	switch val.Kind() {
	case reflect.Uint8, reflect.Uint32:
		typ := intKind2Type[val.Kind()]
		dat, err := val.Convert(typ).Interface().(Marshaler).MarshalBinary()
		if err != nil {
			err = &MarshalError{Type: typ, Err: err}
		}
		return dat, err
	case reflect.Ptr:
		return Marshal(val.Elem().Interface())
	case reflect.Array:
		var ret []byte
		for i := 0; i < val.Len(); i++ {
			bs, err := Marshal(val.Index(i).Interface())
			ret = append(ret, bs...)
			if err != nil {
				return ret, err
			}
		}
		return ret, nil
	case reflect.Struct:
		return getStructHandler(val.Type()).Marshal(val)
	default:
		panic(&InvalidTypeError{
			Type: val.Type(),
			Err: fmt.Errorf("does not implement binstruct.Marshaler and kind=%v is not a supported statically-sized kind",
				val.Kind()),
		})
	}
}
