package zcl

// Foundation ZCL command IDs (global, not cluster-specific).
const (
	FoundationReadAttributes         uint8 = 0x00
	FoundationReadAttributesResponse uint8 = 0x01
	FoundationWriteAttributes        uint8 = 0x02
	FoundationWriteAttributesResp    uint8 = 0x04
	FoundationConfigReporting        uint8 = 0x06
	FoundationConfigReportingResp    uint8 = 0x07
	FoundationReadReportingConfig    uint8 = 0x08
	FoundationReportAttributes       uint8 = 0x0A
	FoundationDefaultResponse        uint8 = 0x0B
	FoundationDiscoverAttributes     uint8 = 0x0C
	FoundationDiscoverAttributesResp uint8 = 0x0D
)

// ZCL frame control bits.
const (
	FrameTypeGlobal           uint8 = 0x00
	FrameTypeCluster          uint8 = 0x01
	FrameManufacturerSpecific uint8 = 0x04
	FrameServerToClient       uint8 = 0x08
	FrameDisableDefaultResp   uint8 = 0x10
)

// ZCL status codes
const (
	ZCLStatusSuccess         uint8 = 0x00
	ZCLStatusFailure         uint8 = 0x01
	ZCLStatusUnsupportedAttr uint8 = 0x86
	ZCLStatusInvalidValue    uint8 = 0x87
	ZCLStatusReadOnly        uint8 = 0x88
	ZCLStatusNotFound        uint8 = 0x8B
	ZCLStatusUnreportable    uint8 = 0x8C
	ZCLStatusInvalidDataType uint8 = 0x8D
)

// StatusName returns a short name for a ZCL status code.
func StatusName(status uint8) string {
	switch status {
	case ZCLStatusSuccess:
		return "SUCCESS"
	case ZCLStatusFailure:
		return "FAILURE"
	case ZCLStatusUnsupportedAttr:
		return "UNSUPPORTED_ATTRIBUTE"
	case ZCLStatusInvalidValue:
		return "INVALID_VALUE"
	case ZCLStatusReadOnly:
		return "READ_ONLY"
	case ZCLStatusNotFound:
		return "NOT_FOUND"
	case ZCLStatusUnreportable:
		return "UNREPORTABLE_ATTRIBUTE"
	case ZCLStatusInvalidDataType:
		return "INVALID_DATA_TYPE"
	}
	return "UNKNOWN"
}
