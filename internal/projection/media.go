package projection

import (
	"strings"

	"projector/internal/models"
)

const inlineSVGPrefix = "data:image/svg+xml;base64,"

// ipfsGateway serves piece media over HTTP; ipfs:// URLs are rewritten to it.
const ipfsGateway = "revolution.mypinata.cloud"

// SupportedMediaURL reports whether a piece's media URL uses a scheme the
// downstream applications can render. Pieces with anything else are skipped
// outright, by policy rather than error.
func SupportedMediaURL(url string) bool {
	if url == "" {
		return false
	}
	return strings.HasPrefix(url, "ipfs://") || strings.Contains(url, inlineSVGPrefix)
}

// IPFSToHTTP rewrites an ipfs:// URL to the HTTP gateway; anything else passes
// through unchanged.
func IPFSToHTTP(url string) string {
	if url == "" {
		return ""
	}
	if !strings.HasPrefix(url, "ipfs://") {
		return url
	}
	return "https://" + ipfsGateway + "/ipfs/" + strings.TrimPrefix(url, "ipfs://")
}

// MediaTypeFromCode maps the contract's media type enum to the stored
// classification.
func MediaTypeFromCode(code uint8) models.MediaType {
	switch code {
	case 1:
		return models.MediaTypeImage
	case 2:
		return models.MediaTypeVideo
	case 3:
		return models.MediaTypeAudio
	case 4:
		return models.MediaTypeText
	default:
		return models.MediaTypeUnknown
	}
}
