package crinex

import (
	"os"

	"github.com/mholt/archiver/v3"
)

// GzipAndRemove gzip-compresses path to path+".gz" and removes the
// uncompressed original on success. It backs the additive
// -z flag: compression itself never produces gzip output, only the CLI
// layer chains it on afterwards.
func GzipAndRemove(path string) (string, error) {
	dst := path + ".gz"
	if err := archiver.CompressFile(path, dst); err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", err
	}
	return dst, nil
}
