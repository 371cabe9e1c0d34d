package record

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// DecodeDataURI decodes the data reference produced by the source site's
// export anchor into the record text it carries. Both base64 and
// percent-encoded payloads are handled.
func DecodeDataURI(href string) (string, error) {
	rest, ok := strings.CutPrefix(href, "data:")
	if !ok {
		return "", fmt.Errorf("not a data reference: %q", truncateRef(href))
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", fmt.Errorf("malformed data reference: missing payload separator")
	}

	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some exporters emit unpadded base64.
			decoded, err = base64.RawStdEncoding.DecodeString(payload)
			if err != nil {
				return "", fmt.Errorf("decoding base64 payload: %w", err)
			}
		}
		return string(decoded), nil
	}

	// PathUnescape rather than QueryUnescape: "+" is a check marker in
	// movetext, not an encoded space.
	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return "", fmt.Errorf("decoding percent-encoded payload: %w", err)
	}
	return decoded, nil
}

func truncateRef(href string) string {
	if len(href) > 64 {
		return href[:64] + "..."
	}
	return href
}
