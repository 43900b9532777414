package saver

import (
	"io"
	"os"
	"path/filepath"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"github.com/pkg/errors"
)

// WriterCloser keeps Writer interface and close function
type WriterCloser interface {
	io.Writer
	Close() error
}

// OpenFileFunc declares function to open file by name and return Writer
type OpenFileFunc func(fileName string) (WriterCloser, error)

// LocalFileSaver saves uploaded audio on local disk
type LocalFileSaver struct {
	// StoragePath is the main folder to save into
	StoragePath  string
	OpenFileFunc OpenFileFunc
}

// NewLocalFileSaver creates LocalFileSaver instance
func NewLocalFileSaver(storagePath string) (*LocalFileSaver, error) {
	if storagePath == "" {
		return nil, errors.New("No storage path provided")
	}
	f := LocalFileSaver{StoragePath: storagePath, OpenFileFunc: openFile}
	return &f, nil
}

// Save saves file to disk
func (fs LocalFileSaver) Save(name string, reader io.Reader) error {
	fileName := filepath.Join(fs.StoragePath, name)
	f, err := fs.OpenFileFunc(fileName)
	if err != nil {
		return errors.Wrap(err, "Can not create file "+fileName)
	}
	defer f.Close()
	savedBytes, err := io.Copy(f, reader)
	if err != nil {
		return errors.Wrap(err, "Can not save file "+fileName)
	}
	cmdapp.Log.Infof("Saved file %s. Size = %d b", fileName, savedBytes)
	return nil
}

// HealthyFunc returns func for healthcheck
func (fs LocalFileSaver) HealthyFunc(minFreeMB int64) func() error {
	return func() error {
		_, err := os.Stat(fs.StoragePath)
		return err
	}
}

func openFile(fileName string) (WriterCloser, error) {
	return os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE, 0666)
}
