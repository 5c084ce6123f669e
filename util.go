package labindex

import "os"

func canstat(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func mkdir(dir string) (err error) {
	if !canstat(dir) {
		err = os.MkdirAll(dir, 0755)
	}
	return
}
