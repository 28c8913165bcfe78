// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package policy

// 遮罩工具：位元 i 代表第 i 顆骰。所有函數零配置（dst 由呼叫端帶入）。

// CountFaces 統計每面顆數寫入 dst（len(dst) 須等於面數），超界面值忽略。
func CountFaces(values []int, dst []int) {
	for i := range dst {
		dst[i] = 0
	}
	for _, v := range values {
		if v >= 1 && v <= len(dst) {
			dst[v-1]++
		}
	}
}

// MaskOfFace 回傳所有面值為 face 的骰的遮罩。
func MaskOfFace(values []int, face int) uint16 {
	var mask uint16
	for i, v := range values {
		if v == face {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// MaskOfIndices 把索引集合轉為遮罩，超界索引忽略。
func MaskOfIndices(indices []int) uint16 {
	var mask uint16
	for _, idx := range indices {
		if idx >= 0 && idx < 16 {
			mask |= 1 << uint(idx)
		}
	}
	return mask
}

// FirstOfEachFace 回傳「每個出現過的面保留最低索引那顆」的遮罩，
// 追順策略用它壓住順子骨架。
func FirstOfEachFace(values []int, faces int) uint16 {
	var mask uint16
	seen := 0 // bit f-1 代表面 f 已保留
	for i, v := range values {
		if v < 1 || v > faces {
			continue
		}
		if seen&(1<<uint(v-1)) == 0 {
			seen |= 1 << uint(v-1)
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// FullMask 回傳 n 顆骰全鎖的遮罩。
func FullMask(n int) uint16 {
	return uint16(1)<<uint(n) - 1
}
