package send

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/yusufsyaifudin/cyberhook/webhook"
)

// ReadAttachment reads local file, the size is checked before reading the content.
func ReadAttachment(path string) (attachment webhook.Attachment, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		err = fmt.Errorf("cannot resolve path %s: %w", path, err)
		return
	}

	stat, err := os.Stat(abs)
	if err != nil {
		err = fmt.Errorf("cannot read file %s: %w", path, err)
		return
	}

	if stat.IsDir() {
		err = fmt.Errorf("%s is a directory", path)
		return
	}

	if stat.Size() > webhook.MaxAttachmentSize {
		err = fmt.Errorf("%s: %w", path, webhook.ErrAttachmentTooLarge)
		return
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		err = fmt.Errorf("cannot read file %s: %w", path, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(abs))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	attachment = webhook.Attachment{
		Filename:    filepath.Base(abs),
		ContentType: contentType,
		Data:        data,
		Source:      abs,
	}

	return
}

func readAll(r io.Reader) ([]byte, error) {
	// content limit is on characters, read a bit more so the validator still reports too long content
	return io.ReadAll(io.LimitReader(r, webhook.MaxContentLength*4+1))
}
