package schema

import (
	"github.com/brimdata/pqnest/pqe"
	"github.com/fraugster/parquet-go/parquet"
	"github.com/fraugster/parquet-go/parquetschema"
)

// ParseDefinition parses a textual message definition such as
//
//	message m {
//	  required int64 id;
//	  optional group tags (LIST) {
//	    repeated group list {
//	      optional binary element (STRING);
//	    }
//	  }
//	}
func ParseDefinition(text string) (*Schema, error) {
	sd, err := parquetschema.ParseSchemaDefinition(text)
	if err != nil {
		return nil, pqe.E(pqe.Invalid, err)
	}
	s := &Schema{}
	for _, c := range sd.RootColumn.Children {
		n, err := fromColumnDefinition(c)
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, n)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func fromColumnDefinition(c *parquetschema.ColumnDefinition) (*Node, error) {
	el := c.SchemaElement
	n := &Node{Name: el.Name}
	if el.RepetitionType != nil {
		switch *el.RepetitionType {
		case parquet.FieldRepetitionType_REQUIRED:
			n.Repetition = Required
		case parquet.FieldRepetitionType_OPTIONAL:
			n.Repetition = Optional
		case parquet.FieldRepetitionType_REPEATED:
			n.Repetition = Repeated
		default:
			return nil, pqe.E(pqe.Invalid, "%s: unrecognized repetition %s", el.Name, el.RepetitionType)
		}
	}
	if len(c.Children) > 0 {
		n.List = el.LogicalType != nil && el.LogicalType.LIST != nil ||
			el.ConvertedType != nil && *el.ConvertedType == parquet.ConvertedType_LIST
		for _, child := range c.Children {
			f, err := fromColumnDefinition(child)
			if err != nil {
				return nil, err
			}
			n.Fields = append(n.Fields, f)
		}
		return n, nil
	}
	if el.Type == nil {
		return nil, pqe.E(pqe.Invalid, "%s: leaf without a type", el.Name)
	}
	typ, err := definitionType(el)
	if err != nil {
		return nil, err
	}
	n.Type = typ
	if typ == FixedBytes && el.TypeLength != nil {
		n.Length = int(*el.TypeLength)
	}
	return n, nil
}

func definitionType(el *parquet.SchemaElement) (Type, error) {
	lt := el.LogicalType
	converted := func(ct parquet.ConvertedType) bool {
		return el.ConvertedType != nil && *el.ConvertedType == ct
	}
	switch *el.Type {
	case parquet.Type_BOOLEAN:
		return Boolean, nil
	case parquet.Type_INT32:
		if lt != nil && lt.DATE != nil || converted(parquet.ConvertedType_DATE) {
			return Date, nil
		}
		return Int32, nil
	case parquet.Type_INT64:
		if lt != nil && lt.TIMESTAMP != nil && lt.TIMESTAMP.Unit != nil {
			switch u := lt.TIMESTAMP.Unit; {
			case u.MILLIS != nil:
				return TimestampMillis, nil
			case u.MICROS != nil:
				return TimestampMicros, nil
			case u.NANOS != nil:
				return TimestampNanos, nil
			}
		}
		if converted(parquet.ConvertedType_TIMESTAMP_MILLIS) {
			return TimestampMillis, nil
		}
		if converted(parquet.ConvertedType_TIMESTAMP_MICROS) {
			return TimestampMicros, nil
		}
		return Int64, nil
	case parquet.Type_INT96:
		return Int96, nil
	case parquet.Type_FLOAT:
		return Float, nil
	case parquet.Type_DOUBLE:
		return Double, nil
	case parquet.Type_BYTE_ARRAY:
		if lt != nil && lt.STRING != nil || converted(parquet.ConvertedType_UTF8) {
			return String, nil
		}
		return Bytes, nil
	case parquet.Type_FIXED_LEN_BYTE_ARRAY:
		return FixedBytes, nil
	}
	return 0, pqe.E(pqe.Invalid, "%s: unsupported type %s", el.Name, el.Type)
}
