// Package ncp defines the interface to the Zigbee stack that carries frames to
// devices. The quirk engine never talks to a radio directly; a backend
// implementing NCP owns network formation, APS transport and the ZCL
// request/response engine.
package ncp

import "context"

// NCP is the abstract interface for a Zigbee network co-processor backend.
type NCP interface {
	// ZDO
	NodeDescriptor(ctx context.Context, shortAddr uint16) ([]byte, error)
	ActiveEndpoints(ctx context.Context, shortAddr uint16) ([]uint8, error)
	SimpleDescriptor(ctx context.Context, shortAddr uint16, endpoint uint8) (*SimpleDescriptor, error)
	Bind(ctx context.Context, req BindRequest) error
	GetLocalIEEE(ctx context.Context) ([8]byte, error)

	// ZCL
	ReadAttributes(ctx context.Context, req ReadAttributesRequest) ([]AttributeResponse, error)
	WriteAttributes(ctx context.Context, req WriteAttributesRequest) error
	SendCommand(ctx context.Context, req ClusterCommandRequest) error
	ConfigureReporting(ctx context.Context, req ConfigureReportingRequest) error

	// Indication callbacks
	OnDeviceAnnounce(handler func(DeviceAnnounceEvent))
	OnDeviceLeft(handler func(DeviceLeftEvent))
	OnAttributeReport(handler func(AttributeReportEvent))
	OnClusterCommand(handler func(ClusterCommandEvent))

	// Lifecycle
	Close() error
}

// SimpleDescriptor describes an endpoint.
type SimpleDescriptor struct {
	Endpoint    uint8
	ProfileID   uint16
	DeviceID    uint16
	InClusters  []uint16
	OutClusters []uint16
}

// BindRequest is a ZDO bind request.
type BindRequest struct {
	TargetShortAddr uint16
	SrcIEEE         [8]byte
	SrcEP           uint8
	ClusterID       uint16
	DstIEEE         [8]byte
	DstEP           uint8
}

// Manufacturer carries the manufacturer-specific tagging of a ZCL frame.
// When Specific is set the frame control bit is raised and Code is sent in
// the header.
type Manufacturer struct {
	Specific bool
	Code     uint16
}

// ReadAttributesRequest specifies which attributes to read.
type ReadAttributesRequest struct {
	DstAddr      uint16
	DstEP        uint8
	ClusterID    uint16
	AttrIDs      []uint16
	Manufacturer Manufacturer
}

// AttributeResponse holds a single attribute read result.
type AttributeResponse struct {
	AttrID   uint16
	Status   uint8
	DataType uint8
	Value    []byte
}

// WriteAttributesRequest specifies attributes to write.
type WriteAttributesRequest struct {
	DstAddr      uint16
	DstEP        uint8
	ClusterID    uint16
	Records      []WriteRecord
	Manufacturer Manufacturer
}

// WriteRecord is a single attribute write.
type WriteRecord struct {
	AttrID   uint16
	DataType uint8
	Value    []byte
}

// ClusterCommandRequest sends a cluster-specific command.
type ClusterCommandRequest struct {
	DstAddr         uint16
	DstEP           uint8
	ClusterID       uint16
	CommandID       uint8
	Payload         []byte
	ServerToClient  bool
	Manufacturer    Manufacturer
	DisableResponse bool
}

// ConfigureReportingRequest sets up attribute reporting.
type ConfigureReportingRequest struct {
	DstAddr      uint16
	DstEP        uint8
	ClusterID    uint16
	AttrID       uint16
	DataType     uint8
	MinInterval  uint16
	MaxInterval  uint16
	ReportChange []byte
	Manufacturer Manufacturer
}

// DeviceLeftEvent is emitted when a device leaves.
type DeviceLeftEvent struct {
	ShortAddr uint16
	IEEEAddr  [8]byte
}

// DeviceAnnounceEvent is emitted on device announce.
type DeviceAnnounceEvent struct {
	ShortAddr  uint16
	IEEEAddr   [8]byte
	Capability uint8
}

// AttributeReportEvent is emitted for unsolicited attribute reports.
type AttributeReportEvent struct {
	SrcAddr          uint16
	SrcEP            uint8
	ClusterID        uint16
	AttrID           uint16
	DataType         uint8
	Value            []byte
	ManufacturerCode uint16 // zero unless the report frame was manufacturer specific
	LQI              uint8
	RSSI             int8
}

// ClusterCommandEvent is emitted for incoming cluster-specific commands.
type ClusterCommandEvent struct {
	SrcAddr   uint16
	SrcEP     uint8
	ClusterID uint16
	CommandID uint8
	Payload   []byte
	LQI       uint8
	RSSI      int8
}
