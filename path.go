package icefile

import "strings"

type columnPath []string

func (path columnPath) append(name string) columnPath {
	return append(path[:len(path):len(path)], name)
}

func (path columnPath) String() string {
	return strings.Join(path, ".")
}
