package nvimhost

import "fmt"

const packagePath = "github.com/nicolagi/linemerge/internal/nvimhost"

func errorf(typeMethod, format string, a ...interface{}) error {
	return fmt.Errorf(packagePath+"."+typeMethod+": "+format, a...)
}
