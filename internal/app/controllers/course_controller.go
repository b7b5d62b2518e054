package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/opencampus/credisphere/internal/app/models"
	"github.com/opencampus/credisphere/internal/app/models/dto"
	"github.com/opencampus/credisphere/internal/app/services"
	"github.com/opencampus/credisphere/internal/middleware"
)

// CourseController handles course offerings and the enrollment lifecycle
type CourseController struct {
	courseService *services.CourseService
	logger        zerolog.Logger
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService *services.CourseService, logger zerolog.Logger) *CourseController {
	return &CourseController{
		courseService: courseService,
		logger:        logger,
	}
}

func toCourseResponse(course *models.CourseOffering) dto.CourseResponse {
	return dto.CourseResponse{
		ID:                 course.ID,
		Name:               course.Name,
		Symbol:             course.Symbol,
		BaseCredits:        course.BaseCredits,
		ExperimentalFactor: course.ExperimentalFactor,
		CreatedAt:          course.CreatedAt,
	}
}

func toRecordResponse(rec *models.EnrollmentRecord) dto.EnrollmentRecordResponse {
	return dto.EnrollmentRecordResponse{
		CourseID:           rec.CourseID,
		RecordID:           rec.RecordID,
		OwnerIdentity:      rec.OwnerIdentity,
		StudentIdentity:    rec.StudentIdentity,
		UniversityIdentity: rec.UniversityIdentity,
		AcademicYear:       rec.AcademicYear,
		Grade:              rec.Grade,
		Status:             string(rec.Status),
		CreatedAt:          rec.CreatedAt,
	}
}

// CreateCourse creates a new course offering
// @Summary Create a course offering
// @Description Creates a course offering with its pricing attributes. Admin only.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course information"
// @Success 201 {object} dto.APIResponse{data=dto.CourseResponse} "Course created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 409 {object} dto.ErrorResponse "Symbol already in use"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if !bindJSON(ctx, &req) {
		return
	}

	course, err := c.courseService.CreateCourse(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(toCourseResponse(course)))
}

// ListCourses lists all course offerings
// @Summary List course offerings
// @Description Returns all course offerings in creation order
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CourseListResponse} "Courses listed"
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.courseService.ListCourses(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.CourseListResponse{
		Courses: make([]dto.CourseResponse, 0, len(courses)),
	}
	for _, course := range courses {
		resp.Courses = append(resp.Courses, toCourseResponse(course))
	}
	resp.Total = len(resp.Courses)

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// GetCourse retrieves one course offering
// @Summary Get a course offering
// @Description Returns one course offering by ID
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Course found"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	course, err := c.courseService.GetCourse(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(toCourseResponse(course)))
}

// QuoteCost quotes the enrollment cost for the calling student
// @Summary Quote enrollment cost
// @Description Returns the token cost the calling student would pay to enroll now, including the repetition surcharge
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseCostResponse} "Cost quoted"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/cost [get]
func (c *CourseController) QuoteCost(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.courseService.QuoteCost(ctx.Request.Context(), courseID, callerIdentity(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// AuthorizeProfessor assigns a professor to teach a course at a university
// @Summary Authorize a professor
// @Description Assigns a professor to grade a course's enrollments at one university, replacing any previous assignment. Admin only.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.AuthorizeProfessorRequest true "Assignment"
// @Success 200 {object} dto.APIResponse{data=dto.AuthorizationResponse} "Professor authorized"
// @Failure 404 {object} dto.ErrorResponse "Course, university or professor not found"
// @Router /courses/{id}/authorizations [post]
func (c *CourseController) AuthorizeProfessor(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.AuthorizeProfessorRequest
	if !bindJSON(ctx, &req) {
		return
	}

	auth, err := c.courseService.AuthorizeProfessor(ctx.Request.Context(), courseID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.AuthorizationResponse{
		CourseID:           auth.CourseID,
		UniversityIdentity: auth.UniversityIdentity,
		ProfessorIdentity:  auth.ProfessorIdentity,
	}))
}

// GetAuthorization returns the professor assigned to a course at a university
// @Summary Get teaching authorization
// @Description Returns the professor assigned to grade a course's enrollments at one university
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param university path string true "University identity"
// @Success 200 {object} dto.APIResponse{data=dto.AuthorizationResponse} "Authorization found"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "No professor assigned"
// @Router /courses/{id}/authorizations/{university} [get]
func (c *CourseController) GetAuthorization(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	auth, err := c.courseService.GetAuthorization(ctx.Request.Context(), courseID, ctx.Param("university"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.AuthorizationResponse{
		CourseID:           auth.CourseID,
		UniversityIdentity: auth.UniversityIdentity,
		ProfessorIdentity:  auth.ProfessorIdentity,
	}))
}

// Enroll enrolls the calling student in a course
// @Summary Enroll in a course
// @Description Spends credit tokens issued by the chosen university to enroll the calling student. Students only.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.EnrollRequest true "Enrollment details"
// @Success 201 {object} dto.APIResponse{data=dto.EnrollmentRecordResponse} "Enrollment created"
// @Failure 404 {object} dto.ErrorResponse "Course or university not found"
// @Failure 409 {object} dto.ErrorResponse "No professor assigned"
// @Failure 422 {object} dto.ErrorResponse "Insufficient balance from the issuing university"
// @Router /courses/{id}/enrollments [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.EnrollRequest
	if !bindJSON(ctx, &req) {
		return
	}

	rec, err := c.courseService.Enroll(ctx.Request.Context(), callerIdentity(ctx), courseID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(toRecordResponse(rec)))
}

// ListRecords lists all enrollment records of a course
// @Summary List enrollment records
// @Description Returns all enrollment records of a course in record order
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.EnrollmentRecordResponse} "Records listed"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/enrollments [get]
func (c *CourseController) ListRecords(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	records, err := c.courseService.ListRecords(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := make([]dto.EnrollmentRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toRecordResponse(rec))
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// GetRecord retrieves one enrollment record
// @Summary Get an enrollment record
// @Description Returns one enrollment record of a course
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param recordId path int true "Record ID"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentRecordResponse} "Record found"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /courses/{id}/enrollments/{recordId} [get]
func (c *CourseController) GetRecord(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	recordID, ok := pathID(ctx, "recordId")
	if !ok {
		return
	}

	rec, err := c.courseService.GetRecord(ctx.Request.Context(), courseID, recordID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(toRecordResponse(rec)))
}

// Evaluate grades an enrollment record
// @Summary Evaluate an enrollment
// @Description Grades an enrollment record, once. A passing grade hands ownership of the record to the student. Only the professor assigned to the record's university may grade. Professors only.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param recordId path int true "Record ID"
// @Param request body dto.EvaluateRequest true "Grade on the 0-1000 scale"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentRecordResponse} "Record evaluated"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the assigned professor"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Failure 409 {object} dto.ErrorResponse "Record already evaluated"
// @Router /courses/{id}/enrollments/{recordId}/evaluation [post]
func (c *CourseController) Evaluate(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	recordID, ok := pathID(ctx, "recordId")
	if !ok {
		return
	}

	var req dto.EvaluateRequest
	if !bindJSON(ctx, &req) {
		return
	}

	rec, err := c.courseService.Evaluate(ctx.Request.Context(), callerIdentity(ctx), courseID, recordID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(toRecordResponse(rec)))
}

// Relocate moves a passed record to another university
// @Summary Relocate an enrollment record
// @Description Moves a passed record, owned by its student, to another university. Students only.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param recordId path int true "Record ID"
// @Param request body dto.RelocateRequest true "Destination university"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentRecordResponse} "Record relocated"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the owner"
// @Failure 404 {object} dto.ErrorResponse "Record or university not found"
// @Failure 409 {object} dto.ErrorResponse "Record is not relocatable"
// @Router /courses/{id}/enrollments/{recordId}/relocation [post]
func (c *CourseController) Relocate(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	recordID, ok := pathID(ctx, "recordId")
	if !ok {
		return
	}

	var req dto.RelocateRequest
	if !bindJSON(ctx, &req) {
		return
	}

	rec, err := c.courseService.Relocate(ctx.Request.Context(), callerIdentity(ctx), courseID, recordID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(toRecordResponse(rec)))
}

// RecordCount counts the records of a course an identity owns
// @Summary Count owned records
// @Description Returns how many enrollment records of a course an identity currently owns
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param identity path string true "Owner identity"
// @Success 200 {object} dto.APIResponse{data=dto.RecordCountResponse} "Count returned"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/records/count/{identity} [get]
func (c *CourseController) RecordCount(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	identity := ctx.Param("identity")

	count, err := c.courseService.RecordCount(ctx.Request.Context(), courseID, identity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.RecordCountResponse{
		CourseID: courseID,
		Identity: identity,
		Count:    count,
	}))
}
