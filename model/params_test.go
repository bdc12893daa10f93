// Copyright 2026 cinerec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams_Copy(t *testing.T) {
	// Create parameters
	a := Params{
		NFactors: 1,
		Lr:       0.1,
		Reg:      0.2,
		UseBias:  true,
	}
	// Create copy
	b := a.Copy()
	b[NFactors] = 2
	b[Lr] = 0.2
	b[Reg] = 0.3
	b[UseBias] = false
	// Check original parameters
	assert.Equal(t, 1, a.GetInt(NFactors, -1))
	assert.Equal(t, float32(0.1), a.GetFloat32(Lr, -0.1))
	assert.Equal(t, float32(0.2), a.GetFloat32(Reg, -0.1))
	assert.True(t, a.GetBool(UseBias, false))
	// Check copy parameters
	assert.Equal(t, 2, b.GetInt(NFactors, -1))
	assert.Equal(t, float32(0.2), b.GetFloat32(Lr, -0.1))
	assert.Equal(t, float32(0.3), b.GetFloat32(Reg, -0.1))
	assert.False(t, b.GetBool(UseBias, true))
}

func TestParams_GetInt(t *testing.T) {
	p := Params{}
	// Empty case
	assert.Equal(t, -1, p.GetInt(NFactors, -1))
	// Normal case
	p[NFactors] = 0
	assert.Equal(t, 0, p.GetInt(NFactors, -1))
	// Wrong type case
	p[NFactors] = "hello"
	assert.Equal(t, -1, p.GetInt(NFactors, -1))
}

func TestParams_GetInt64(t *testing.T) {
	p := Params{}
	// Empty case
	assert.Equal(t, int64(-1), p.GetInt64(RandomState, -1))
	// Normal case
	p[RandomState] = int64(0)
	assert.Equal(t, int64(0), p.GetInt64(RandomState, -1))
	// Int case
	p[RandomState] = 0
	assert.Equal(t, int64(0), p.GetInt64(RandomState, -1))
	// Wrong type case
	p[RandomState] = "hello"
	assert.Equal(t, int64(-1), p.GetInt64(RandomState, -1))
}

func TestParams_GetFloat32(t *testing.T) {
	p := Params{}
	// Empty case
	assert.Equal(t, float32(0.1), p.GetFloat32(Lr, 0.1))
	// Normal case
	p[Lr] = float32(1.0)
	assert.Equal(t, float32(1.0), p.GetFloat32(Lr, 0.1))
	// Float64 case
	p[Lr] = 2.0
	assert.Equal(t, float32(2.0), p.GetFloat32(Lr, 0.1))
	// Int case
	p[Lr] = 3
	assert.Equal(t, float32(3.0), p.GetFloat32(Lr, 0.1))
	// Wrong type case
	p[Lr] = "hello"
	assert.Equal(t, float32(0.1), p.GetFloat32(Lr, 0.1))
}

func TestParams_GetBoolAndString(t *testing.T) {
	p := Params{UseBias: "yes", "Language": "english"}
	assert.True(t, p.GetBool(UseBias, true))
	assert.Equal(t, "english", p.GetString("Language", ""))
	assert.Equal(t, "none", p.GetString(NFactors, "none"))
}

func TestParams_Overwrite(t *testing.T) {
	a := Params{NFactors: 100, Lr: 0.005}
	b := a.Overwrite(Params{NFactors: 10, NEpochs: 5})
	assert.Equal(t, 100, a.GetInt(NFactors, -1))
	assert.Equal(t, 10, b.GetInt(NFactors, -1))
	assert.Equal(t, 5, b.GetInt(NEpochs, -1))
	assert.Equal(t, float32(0.005), b.GetFloat32(Lr, -1))
}

func TestBaseModel_SetParams(t *testing.T) {
	var m BaseModel
	m.SetParams(Params{RandomState: 42})
	assert.Equal(t, int64(42), m.GetRandomState())
	assert.Equal(t, 42, m.GetParams().GetInt(RandomState, 0))

	var n BaseModel
	n.SetParams(Params{RandomState: int64(42)})
	assert.Equal(t, m.GetRandomGenerator().Int63(), n.GetRandomGenerator().Int63())
}
