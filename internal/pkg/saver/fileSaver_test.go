package saver

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaves(t *testing.T) {
	fakeFile := fakeWriterCloser{bytes.NewBufferString(""), "", false}
	fileSaver := LocalFileSaver{StoragePath: "/data/",
		OpenFileFunc: func(file string) (WriterCloser, error) {
			fakeFile.Name = file
			return &fakeFile, nil
		}}
	err := fileSaver.Save("file.mp3", strings.NewReader("audio"))
	assert.Nil(t, err)
	assert.Equal(t, fakeFile.String(), "audio")
	assert.Equal(t, fakeFile.Name, "/data/file.mp3")
	assert.True(t, fakeFile.Closed)
}

func TestFailsOnNoOpen(t *testing.T) {
	fakeFile := fakeWriterCloser{bytes.NewBufferString(""), "", false}
	fileSaver := LocalFileSaver{StoragePath: "",
		OpenFileFunc: func(file string) (WriterCloser, error) {
			return &fakeFile, errors.New("no file")
		}}
	err := fileSaver.Save("file.mp3", strings.NewReader("audio"))
	assert.NotNil(t, err)
}

func TestChecksDirOnInit(t *testing.T) {
	_, err := NewLocalFileSaver("./")
	assert.Nil(t, err)

	_, err = NewLocalFileSaver("")
	assert.NotNil(t, err)
}

func TestHealthyFunc(t *testing.T) {
	fs, err := NewLocalFileSaver("./")
	assert.Nil(t, err)
	assert.Nil(t, fs.HealthyFunc(1)())

	fs.StoragePath = "./no-such-dir-here"
	assert.NotNil(t, fs.HealthyFunc(1)())
}

type fakeWriterCloser struct {
	*bytes.Buffer
	Name   string
	Closed bool
}

func (t *fakeWriterCloser) Close() error {
	t.Closed = true
	return nil
}
