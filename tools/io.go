package tools

import (
	"os"
)

func CreateDirectoryIfDoesNotExist(directory string) error {
	if directory == "" || directory == "." {
		return nil
	}
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		err := os.MkdirAll(directory, 0777)
		if err != nil {
			return err
		}
	}
	return nil
}
