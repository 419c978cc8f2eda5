package uanode

import "fmt"

// StatusCode is a protocol status. The top two bits carry the severity.
type StatusCode uint32

const (
	Good StatusCode = 0

	BadUnexpectedError          StatusCode = 0x80010000
	BadInternalError            StatusCode = 0x80020000
	BadCommunicationError       StatusCode = 0x80050000
	BadEncodingError            StatusCode = 0x80060000
	BadDecodingError            StatusCode = 0x80070000
	BadTimeout                  StatusCode = 0x800A0000
	BadUserAccessDenied         StatusCode = 0x801F0000
	BadRequestCancelledByClient StatusCode = 0x802C0000
	BadNodeIDUnknown            StatusCode = 0x80340000
	BadAttributeIDInvalid       StatusCode = 0x80350000
	BadDataEncodingUnsupported  StatusCode = 0x80390000
	BadNotReadable              StatusCode = 0x803A0000
	BadNotWritable              StatusCode = 0x803B0000
	BadNotFound                 StatusCode = 0x803E0000
	BadTypeMismatch             StatusCode = 0x80740000
)

var statusNames = map[StatusCode]string{
	Good:                        "Good",
	BadUnexpectedError:          "Bad_UnexpectedError",
	BadInternalError:            "Bad_InternalError",
	BadCommunicationError:       "Bad_CommunicationError",
	BadEncodingError:            "Bad_EncodingError",
	BadDecodingError:            "Bad_DecodingError",
	BadTimeout:                  "Bad_Timeout",
	BadUserAccessDenied:         "Bad_UserAccessDenied",
	BadRequestCancelledByClient: "Bad_RequestCancelledByClient",
	BadNodeIDUnknown:            "Bad_NodeIdUnknown",
	BadAttributeIDInvalid:       "Bad_AttributeIdInvalid",
	BadDataEncodingUnsupported:  "Bad_DataEncodingUnsupported",
	BadNotReadable:              "Bad_NotReadable",
	BadNotWritable:              "Bad_NotWritable",
	BadNotFound:                 "Bad_NotFound",
	BadTypeMismatch:             "Bad_TypeMismatch",
}

// IsGood reports whether the severity of c is Good.
func (c StatusCode) IsGood() bool { return c&0xC0000000 == 0 }

// IsUncertain reports whether the severity of c is Uncertain.
func (c StatusCode) IsUncertain() bool { return c&0xC0000000 == 0x40000000 }

// IsBad reports whether the severity of c is Bad.
func (c StatusCode) IsBad() bool { return c&0x80000000 != 0 }

func (c StatusCode) String() string {
	if name, ok := statusNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%08X", uint32(c))
}

// ParseStatusCode maps a symbolic name such as "Bad_NotWritable" back to its code.
func ParseStatusCode(name string) (StatusCode, bool) {
	for code, n := range statusNames {
		if n == name {
			return code, true
		}
	}
	return 0, false
}
