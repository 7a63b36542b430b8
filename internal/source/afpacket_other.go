//go:build !linux

package source

import (
	"fmt"

	"firestige.xyz/sniffer/internal/core"
)

func openAFPacket(cfg LiveConfig) (Source, error) {
	return nil, fmt.Errorf("%w: the %s engine is only available on linux", core.ErrInvalidArgument, EngineAFPacket)
}
