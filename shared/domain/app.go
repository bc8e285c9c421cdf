package domain

type Status struct {
	Redis bool
	DB    bool
}

type Stats struct {
	Users int64
	Files int64
}
