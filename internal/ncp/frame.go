package ncp

import (
	"encoding/binary"

	"zigbee-quirks/internal/zcl"
)

// ZCL frame builders shared by backends that hand raw APS payloads to the
// radio. Manufacturer-specific requests get the frame control bit and the
// manufacturer code in the header.

func header(frameType uint8, m Manufacturer, seq, cmdID uint8) []byte {
	h := zcl.FrameHeader{
		FrameControl: frameType | zcl.FrameDisableDefaultResp,
		Seq:          seq,
		CommandID:    cmdID,
	}
	if m.Specific {
		h.FrameControl |= zcl.FrameManufacturerSpecific
		h.ManufacturerCode = m.Code
	}
	return h.Encode()
}

// BuildReadAttributes builds a ZCL Read Attributes frame.
func BuildReadAttributes(seq uint8, req ReadAttributesRequest) []byte {
	buf := header(zcl.FrameTypeGlobal, req.Manufacturer, seq, zcl.FoundationReadAttributes)
	for _, id := range req.AttrIDs {
		buf = binary.LittleEndian.AppendUint16(buf, id)
	}
	return buf
}

// BuildWriteAttributes builds a ZCL Write Attributes frame.
func BuildWriteAttributes(seq uint8, req WriteAttributesRequest) []byte {
	buf := header(zcl.FrameTypeGlobal, req.Manufacturer, seq, zcl.FoundationWriteAttributes)
	for _, rec := range req.Records {
		buf = binary.LittleEndian.AppendUint16(buf, rec.AttrID)
		buf = append(buf, rec.DataType)
		buf = append(buf, rec.Value...)
	}
	return buf
}

// BuildClusterCommand builds a ZCL cluster-specific command frame.
func BuildClusterCommand(seq uint8, req ClusterCommandRequest) []byte {
	frameType := zcl.FrameTypeCluster
	if req.ServerToClient {
		frameType |= zcl.FrameServerToClient
	}
	buf := header(frameType, req.Manufacturer, seq, req.CommandID)
	if !req.DisableResponse {
		buf[0] &^= zcl.FrameDisableDefaultResp
	}
	return append(buf, req.Payload...)
}

// BuildConfigureReporting builds a ZCL Configure Reporting frame.
func BuildConfigureReporting(seq uint8, req ConfigureReportingRequest) []byte {
	buf := header(zcl.FrameTypeGlobal, req.Manufacturer, seq, zcl.FoundationConfigReporting)
	// direction(1) + attrID(2) + dataType(1) + minInterval(2) + maxInterval(2) + reportableChange(N)
	buf = append(buf, 0x00)
	buf = binary.LittleEndian.AppendUint16(buf, req.AttrID)
	buf = append(buf, req.DataType)
	buf = binary.LittleEndian.AppendUint16(buf, req.MinInterval)
	buf = binary.LittleEndian.AppendUint16(buf, req.MaxInterval)
	return append(buf, req.ReportChange...)
}

// ParseAttributeResponses parses the records of a Read Attributes Response.
// Format: [attrID(2) + status(1) + (dataType(1) + value(N) if status == 0)]...
func ParseAttributeResponses(data []byte) []AttributeResponse {
	var results []AttributeResponse
	for len(data) >= 3 {
		ar := AttributeResponse{
			AttrID: binary.LittleEndian.Uint16(data[0:2]),
			Status: data[2],
		}
		data = data[3:]
		if ar.Status != zcl.ZCLStatusSuccess {
			results = append(results, ar)
			continue
		}
		if len(data) < 1 {
			break
		}
		ar.DataType = data[0]
		data = data[1:]

		n, ok := zcl.ValueLength(ar.DataType, data)
		if !ok {
			// Unknown or truncated: value boundaries can't be determined.
			results = append(results, ar)
			return results
		}
		ar.Value = append([]byte(nil), data[:n]...)
		data = data[n:]
		results = append(results, ar)
	}
	return results
}

// ParseAttributeReports parses the records of a Report Attributes frame.
// Format: [attrID(2) + dataType(1) + value(N)]...
func ParseAttributeReports(data []byte) []AttributeReportEvent {
	var reports []AttributeReportEvent
	for len(data) >= 3 {
		attrID := binary.LittleEndian.Uint16(data[0:2])
		dataType := data[2]
		data = data[3:]

		n, ok := zcl.ValueLength(dataType, data)
		if !ok {
			return reports
		}
		reports = append(reports, AttributeReportEvent{
			AttrID:   attrID,
			DataType: dataType,
			Value:    append([]byte(nil), data[:n]...),
		})
		data = data[n:]
	}
	return reports
}

// ParseIncoming splits an incoming ZCL frame into attribute reports or a
// cluster command. Read responses and other global commands are returned as
// neither; backends route them by sequence number.
func ParseIncoming(srcAddr uint16, srcEP uint8, clusterID uint16, frame []byte) ([]AttributeReportEvent, *ClusterCommandEvent, error) {
	h, payload, err := zcl.ParseFrameHeader(frame)
	if err != nil {
		return nil, nil, err
	}
	if h.IsClusterCommand() {
		return nil, &ClusterCommandEvent{
			SrcAddr:   srcAddr,
			SrcEP:     srcEP,
			ClusterID: clusterID,
			CommandID: h.CommandID,
			Payload:   payload,
		}, nil
	}
	if h.CommandID != zcl.FoundationReportAttributes {
		return nil, nil, nil
	}
	reports := ParseAttributeReports(payload)
	for i := range reports {
		reports[i].SrcAddr = srcAddr
		reports[i].SrcEP = srcEP
		reports[i].ClusterID = clusterID
		if h.ManufacturerSpecific() {
			reports[i].ManufacturerCode = h.ManufacturerCode
		}
	}
	return reports, nil, nil
}
