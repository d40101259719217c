package coordinator

import (
	"context"
	"fmt"

	"zigbee-quirks/internal/device"
	"zigbee-quirks/internal/ncp"
)

// coordinatorEndpoint is the local endpoint reports are bound to.
const coordinatorEndpoint = 1

// Bind binds cluster clusterID on endpoint ep of dev to the coordinator, so
// reports reach it.
func (c *Coordinator) Bind(ctx context.Context, dev *device.Device, ep uint8, clusterID uint16) error {
	srcAddr, err := ParseIEEE(dev.IEEE)
	if err != nil {
		return fmt.Errorf("parse src ieee: %w", err)
	}
	return c.ncp.Bind(ctx, ncp.BindRequest{
		TargetShortAddr: dev.ShortAddr,
		SrcIEEE:         srcAddr,
		SrcEP:           ep,
		ClusterID:       clusterID,
		DstIEEE:         c.localIEEE,
		DstEP:           coordinatorEndpoint,
	})
}
