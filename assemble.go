package beheader

import (
	"encoding/binary"
	"fmt"
)

// stripLeadingBox drops the container's declared first box, leaving the
// remainder whose first box the synthesized header replaces.
func stripLeadingBox(container []byte) ([]byte, error) {
	if len(container) < 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedContainer, len(container))
	}
	lead := int64(binary.BigEndian.Uint32(container[:4]))
	if lead > int64(len(container)) {
		return nil, fmt.Errorf("%w: lead box %d exceeds container %d", ErrTruncatedContainer, lead, len(container))
	}
	return container[lead:], nil
}
