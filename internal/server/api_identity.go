package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kapu/customer-crm-go/internal/domain"
	"github.com/kapu/customer-crm-go/internal/identity"
	"github.com/kapu/customer-crm-go/internal/util"
)

type parseIdentityRequest struct {
	SSNFront string `json:"ssnFront"`
	SSNBack  string `json:"ssnBack"`
	// KnownBirthYear: 이미 알고 있는 출생연도 (세기 코드 교차 검증용, 선택)
	KnownBirthYear int `json:"knownBirthYear"`
}

type parseIdentityResponse struct {
	IsValid      bool          `json:"isValid"`
	BirthDate    string        `json:"birthDate,omitempty"`
	Gender       domain.Gender `json:"gender,omitempty"`
	GenderLabel  string        `json:"genderLabel,omitempty"`
	EncodedID    string        `json:"encodedId,omitempty"`
	StandardAge  *int          `json:"standardAge,omitempty"`
	KoreanAge    *int          `json:"koreanAge,omitempty"`
	InsuranceAge *int          `json:"insuranceAge,omitempty"`
	ErrKind      string        `json:"errKind,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
}

// ParseIdentity: POST /api/identity/parse
// 저장 없이 주민번호 파싱 결과와 파생 표시값(나이 3종)을 미리 반환한다.
// 입력 원문은 어디에도 저장하지 않는다.
func (h *APIHandler) ParseIdentity(c *gin.Context) {
	var req parseIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}

	// 미래 날짜 판정은 KST 날짜 기준
	now := util.NowKST()
	front := identity.CleanDigits(req.SSNFront)
	back := identity.CleanDigits(req.SSNBack)

	var parsed domain.ParsedIdentity
	if req.KnownBirthYear > 0 {
		parsed = identity.VerifyAgainstBirthYear(front+back, req.KnownBirthYear, now)
	} else {
		parsed = identity.ParseSegments(front, back, now)
	}

	resp := parseIdentityResponse{
		IsValid:      parsed.IsValid,
		ErrKind:      string(parsed.ErrKind),
		ErrorMessage: parsed.ErrorMessage,
	}
	if parsed.IsValid {
		standard := identity.CalculateAge(parsed.BirthDate, domain.AgeStandard, now)
		korean := identity.CalculateAge(parsed.BirthDate, domain.AgeKorean, now)
		insurance := identity.CalculateAge(parsed.BirthDate, domain.AgeInsurance, now)

		resp.BirthDate = parsed.BirthDate.Format("2006-01-02")
		resp.Gender = parsed.Gender
		resp.GenderLabel = parsed.Gender.Label()
		resp.EncodedID = identity.MaskResidentID(front, back)
		resp.StandardAge = &standard
		resp.KoreanAge = &korean
		resp.InsuranceAge = &insurance
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  resp,
	})
}

type classifyBMIRequest struct {
	HeightCm string        `json:"heightCm"`
	WeightKg string        `json:"weightKg"`
	Gender   domain.Gender `json:"gender"`
}

// ClassifyBMI: POST /api/identity/bmi
// 키/몸무게 입력으로 BMI와 성별 기준 분류를 미리 계산한다.
func (h *APIHandler) ClassifyBMI(c *gin.Context) {
	var req classifyBMIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}

	bmi, ok := identity.CalculateBMI(req.HeightCm, req.WeightKg)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"available": false,
		})
		return
	}

	class := identity.ClassifyBMI(bmi, req.Gender)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"available": true,
		"bmi":       bmi,
		"class":     class,
	})
}
