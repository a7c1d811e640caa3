package metadata

import "github.com/ThreeDotsLabs/watermill/message"

// FromWatermill copies Watermill message headers.
func FromWatermill(md message.Metadata) Metadata {
	result := make(Metadata, len(md))
	for k, v := range md {
		result[k] = v
	}
	return result
}

// ToWatermill copies the headers into a Watermill map ready to be assigned to
// message.Message.Metadata.
func ToWatermill(md Metadata) message.Metadata {
	wm := make(message.Metadata, len(md))
	for k, v := range md {
		wm[k] = v
	}
	return wm
}
