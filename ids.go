package uanode

// Well-known namespace 0 node ids.
var (
	HierarchicalReferences = NewNumericNodeID(0, 33)
	Organizes              = NewNumericNodeID(0, 35)
	HasTypeDefinition      = NewNumericNodeID(0, 40)
	HasProperty            = NewNumericNodeID(0, 46)
	HasComponent           = NewNumericNodeID(0, 47)

	BaseDataVariableType = NewNumericNodeID(0, 63)
	PropertyType         = NewNumericNodeID(0, 68)

	ObjectsFolder = NewNumericNodeID(0, 85)
	Server        = NewNumericNodeID(0, 2253)
)

// Builtin data types.
var (
	DataTypeBoolean       = NewNumericNodeID(0, 1)
	DataTypeByte          = NewNumericNodeID(0, 3)
	DataTypeUInt16        = NewNumericNodeID(0, 5)
	DataTypeInt32         = NewNumericNodeID(0, 6)
	DataTypeUInt32        = NewNumericNodeID(0, 7)
	DataTypeInt64         = NewNumericNodeID(0, 8)
	DataTypeDouble        = NewNumericNodeID(0, 11)
	DataTypeString        = NewNumericNodeID(0, 12)
	DataTypeDateTime      = NewNumericNodeID(0, 13)
	DataTypeLocalizedText = NewNumericNodeID(0, 21)
	DataTypeStructure     = NewNumericNodeID(0, 22)
)
