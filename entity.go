package rowmap

// Entity is the metadata contract implemented by application record
// types that map onto one database table. The remaining mapping (field
// names, value kinds) is derived from the struct shape by the codec
// package.
//
// Methods must be declared on the value receiver so that the zero value
// of the type answers them.
type Entity interface {
	// TableName returns the table the type maps onto.
	TableName() string

	// PrimaryKeyColumn returns the column name of the primary key.
	PrimaryKeyColumn() string
}
