package submit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// encodeBody serializes a snapshot the way a browser would: urlencoded for
// plain forms, multipart when files are attached.
func encodeBody(ctx context.Context, snap Snapshot) (io.Reader, string, error) {
	if !snap.HasFiles() {
		return strings.NewReader(snap.Values().Encode()), "application/x-www-form-urlencoded", nil
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, field := range snap.Fields {
		if field.File == nil {
			if err := writer.WriteField(field.Name, field.Value); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", field.Name, err)
			}
			continue
		}
		if err := writeFilePart(ctx, writer, field); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func writeFilePart(ctx context.Context, writer *multipart.Writer, field Field) error {
	ref := field.File
	var data []byte
	if ref.Open != nil {
		var err error
		data, err = ref.Open(ctx)
		if err != nil {
			return fmt.Errorf("read file %s: %w", ref.Filename, err)
		}
	}
	contentType := ref.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(field.Name), escapeQuotes(ref.Filename)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create part %s: %w", field.Name, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write part %s: %w", field.Name, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
