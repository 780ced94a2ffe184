package kvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/cyberhook/pkg/validator"
	"go.uber.org/multierr"
)

var fileKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

type FileConfig struct {
	Dir string `validate:"required"`
}

// File keeps each key as <Dir>/<key>.json, written to a temp file then renamed.
type File struct {
	Conf FileConfig
}

var _ Store = (*File)(nil)

func NewFile(conf FileConfig) (*File, error) {
	err := validator.Validate(conf)
	if err != nil {
		err = fmt.Errorf("error validate store file: %w", err)
		return nil, err
	}

	err = os.MkdirAll(conf.Dir, 0o700)
	if err != nil {
		err = fmt.Errorf("cannot create store dir %s: %w", conf.Dir, err)
		return nil, err
	}

	return &File{Conf: conf}, nil
}

func (f *File) path(key string) (string, error) {
	if key == "." || key == ".." || !fileKeyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid file store key '%s'", key)
	}

	return filepath.Join(f.Conf.Dir, key+".json"), nil
}

func (f *File) GetAs(_ context.Context, key string, out interface{}) error {
	fileName, err := f.path(key)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(fileName)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrKeyNotExist, fileName)
	}

	if err != nil {
		return fmt.Errorf("cannot read %s: %w", fileName, err)
	}

	return json.Unmarshal(content, out)
}

func (f *File) Set(_ context.Context, key string, inValue interface{}) (err error) {
	fileName, err := f.path(key)
	if err != nil {
		return
	}

	val, err := json.Marshal(inValue)
	if err != nil {
		err = fmt.Errorf("cannot marshal json value: %w", err)
		return
	}

	tmp, err := os.CreateTemp(f.Conf.Dir, "."+key+".*.tmp")
	if err != nil {
		err = fmt.Errorf("cannot create temp file: %w", err)
		return
	}

	defer func() {
		if err == nil {
			return
		}

		if _err := os.Remove(tmp.Name()); _err != nil && !errors.Is(_err, os.ErrNotExist) {
			err = multierr.Append(err, fmt.Errorf("cannot remove temp file: %w", _err))
		}
	}()

	_, err = tmp.Write(val)
	if err == nil {
		err = tmp.Sync()
	}

	if _err := tmp.Close(); _err != nil {
		err = multierr.Append(err, _err)
	}

	if err != nil {
		err = fmt.Errorf("cannot write temp file %s: %w", tmp.Name(), err)
		return
	}

	err = os.Rename(tmp.Name(), fileName)
	if err != nil {
		err = fmt.Errorf("cannot replace %s: %w", fileName, err)
		return
	}

	return
}

func (f *File) Delete(_ context.Context, key string) error {
	fileName, err := f.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(fileName)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot delete %s: %w", fileName, err)
	}

	return nil
}
