//go:build marrowdebug

package container

import "fmt"

func assertIndex(i, size int) {
	if i < 0 || i >= size {
		panic(fmt.Sprintf("container: index %d out of range [0,%d)", i, size))
	}
}
