package game

import "github.com/google/uuid"

type uuidGen struct{}

func (uuidGen) Generate() string {
	return uuid.NewString()
}

func NewIdGen() uuidGen {
	return uuidGen{}
}
