package renderer

import (
	"encoding/base64"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"FormCraft-Backend/src/models"

	"github.com/gabriel-vasile/mimetype"
)

// UploadValue is the value of a file, media or banner field. DataURL is set
// when the browser inlined the file; multipart submissions carry Size instead.
type UploadValue struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	DataURL  string `json:"dataUrl,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// ParseAccept splits an HTML accept attribute into its entries.
func ParseAccept(accept string) []string {
	var out []string
	for _, part := range strings.Split(accept, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Accepts reports whether a file matches an accept list. Entries may be exact
// MIME types, wildcards like image/*, or extensions like .pdf. An empty list
// accepts everything.
func Accepts(accept []string, mimeType, fileName string) bool {
	if len(accept) == 0 {
		return true
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, a := range accept {
		switch {
		case a == "*/*" || a == "*":
			return true
		case strings.HasPrefix(a, "."):
			if ext == a {
				return true
			}
		case strings.HasSuffix(a, "/*"):
			if strings.HasPrefix(mimeType, strings.TrimSuffix(a, "*")) {
				return true
			}
		case a == mimeType:
			return true
		}
	}
	return false
}

// containerTypes maps generic formats that sniffing reports for several
// document types to the declared types they may stand for.
var containerTypes = map[string][]string{
	"application/zip":           {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	"application/x-ole-storage": {"application/msword"},
}

// ContentType returns the media type of content as sniffed from its bytes.
// The declared type is only used to name a generic container more precisely.
func ContentType(detected *mimetype.MIME, declared string) string {
	sniffed := baseType(detected.String())
	declared = baseType(declared)
	if slices.Contains(containerTypes[sniffed], declared) {
		return declared
	}
	return sniffed
}

func baseType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

// dataURLInfo decodes a data URL and reports the sniffed media type and the
// decoded size of its payload.
func dataURLInfo(dataURL string) (mimeType string, size int64, ok bool) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", 0, false
	}
	meta, payload, found := strings.Cut(dataURL[len("data:"):], ",")
	if !found {
		return "", 0, false
	}
	declared, params, _ := strings.Cut(meta, ";")

	var content []byte
	if slices.Contains(strings.Split(params, ";"), "base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", 0, false
		}
		content = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return "", 0, false
		}
		content = []byte(unescaped)
	}
	return ContentType(mimetype.Detect(content), declared), int64(len(content)), true
}

func newUpload(field models.FieldDescriptor, mode Mode, onChange ChangeFunc) Widget {
	w := newWidget(field, mode, onChange)
	allowed, maxMB, _ := field.UploadLimits()
	w.cons.Accept = ParseAccept(allowed)
	if maxMB > 0 {
		w.cons.MaxBytes = int64(maxMB) << 20
	}
	if p, ok := field.Props.(*models.BannerUploadProps); ok && mode == ModeFill && !p.CanUpload {
		w.cons.Disabled = true
	}

	w.normalize = func(raw any) (any, error) {
		var v UploadValue
		switch t := raw.(type) {
		case UploadValue:
			v = t
		case *UploadValue:
			if t == nil {
				return nil, nil
			}
			v = *t
		case map[string]any:
			v.FileName, _ = t["fileName"].(string)
			v.FileType, _ = t["fileType"].(string)
			v.DataURL, _ = t["dataUrl"].(string)
			switch n := t["size"].(type) {
			case float64:
				v.Size = int64(n)
			case int64:
				v.Size = n
			case int:
				v.Size = int64(n)
			}
		default:
			return nil, invalid(field.ID, "expected a file, got %T", raw)
		}
		if v.DataURL != "" {
			mimeType, size, ok := dataURLInfo(v.DataURL)
			if !ok {
				return nil, invalid(field.ID, "malformed data url")
			}
			// the payload is the file; claims about it are not
			v.FileType = mimeType
			v.Size = size
		}
		return v, nil
	}
	w.check = func(value any) error {
		var v UploadValue
		switch t := value.(type) {
		case UploadValue:
			v = t
		case *UploadValue:
			v = *t
		default:
			return invalid(field.ID, "expected a file")
		}
		if !Accepts(w.cons.Accept, v.FileType, v.FileName) {
			return invalid(field.ID, "file type %s is not allowed", v.FileType)
		}
		if w.cons.MaxBytes > 0 && v.Size > w.cons.MaxBytes {
			return invalid(field.ID, "file exceeds %d MB", maxMB)
		}
		return nil
	}
	return w
}
