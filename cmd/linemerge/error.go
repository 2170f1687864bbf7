package main

import "fmt"

func errorf(typeMethod, format string, a ...interface{}) error {
	return fmt.Errorf("github.com/nicolagi/linemerge/cmd/linemerge."+typeMethod+": "+format, a...)
}
