package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vidtrack/internal/dao"
	"vidtrack/internal/model"
	"vidtrack/internal/storage"
	"vidtrack/pkg/log"
)

const jobKey = "job"

// SetJobToContext loads the job named by the job_id path parameter.
func (s *Server) SetJobToContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := s.jobs.GetJob(c, c.Param("job_id"))
		if err != nil {
			s.writeServiceError(c, err)
			c.Abort()
			return
		}
		if !s.sameUser(c, job.UserId) {
			s.writeError(c, http.StatusForbidden, errors.New("job belongs to another user"))
			c.Abort()
			return
		}
		c.Set(jobKey, job)
		c.Next()
	}
}

// handleUploadURL 获取上传地址
// @Summary 获取视频上传地址
// @Description 为视频分配新的存储目录并返回预签名上传地址
// @Tags 任务
// @Produce json
// @Param filename query string true "视频文件名"
// @Param content_type query string false "视频MIME类型"
// @Success 200 {object} dao.UploadURLResponse "获取成功"
// @Failure 400 {object} ErrorResponse "请求参数错误"
// @Failure 401 {object} ErrorResponse "未授权"
// @Router /api/v1/upload_url [get]
func (s *Server) handleUploadURL(c *gin.Context) {
	var req dao.UploadURLRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	if req.ContentType == "" {
		req.ContentType = storage.ContentTypeOf(req.Filename)
	}

	ticket, err := s.jobs.RequestUpload(c, req.Filename, req.ContentType)
	if err != nil {
		s.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dao.UploadURLResponse{
		URL:          ticket.URL,
		ObjectFolder: ticket.ObjectFolder,
		Filename:     ticket.Filename,
		ExpiredIn:    int64(ticket.ExpiresIn / time.Second),
	})
}

// handleStartAnalysis 启动分析
// @Summary 启动视频分析
// @Description 对已上传的视频启动人员追踪任务
// @Tags 任务
// @Accept json
// @Produce json
// @Param req body dao.StartAnalysisRequest true "启动分析请求"
// @Success 200 {object} dao.StartAnalysisResponse "启动成功"
// @Failure 400 {object} ErrorResponse "请求参数错误"
// @Failure 401 {object} ErrorResponse "未授权"
// @Failure 403 {object} ErrorResponse "无权限"
// @Router /api/v1/start_analysis [post]
func (s *Server) handleStartAnalysis(c *gin.Context) {
	var req dao.StartAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	if !s.sameUser(c, req.UserId) {
		s.writeError(c, http.StatusForbidden, errors.New("cannot start analysis for another user"))
		return
	}

	job, err := s.jobs.SubmitJob(c, req.UserId, req.StorageFolder, req.Filename)
	if err != nil {
		s.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dao.StartAnalysisResponse{JobId: job.JobId})
}

// handleGetJob 获取任务
// @Summary 获取任务
// @Description 根据job_id获取任务详情
// @Tags 任务
// @Produce json
// @Param job_id path string true "任务job_id"
// @Success 200 {object} dao.JobResponse "获取成功"
// @Failure 404 {object} ErrorResponse "任务不存在"
// @Router /api/v1/job/{job_id} [get]
func (s *Server) handleGetJob(c *gin.Context) {
	job := c.MustGet(jobKey).(*model.JobRecord)
	c.JSON(http.StatusOK, dao.JobResponse{Job: job})
}

// handleVideoURL 获取视频地址
// @Summary 获取视频播放地址
// @Tags 任务
// @Produce json
// @Param job_id path string true "任务job_id"
// @Success 200 {object} dao.URLResponse "获取成功"
// @Failure 404 {object} ErrorResponse "任务不存在"
// @Router /api/v1/job/{job_id}/video_url [get]
func (s *Server) handleVideoURL(c *gin.Context) {
	job := c.MustGet(jobKey).(*model.JobRecord)

	url, err := s.jobs.VideoURL(c, job.JobId)
	if err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dao.NewURLResponse(url.URL, url.ExpiresIn))
}

// handleResultsURL 获取结果地址
// @Summary 获取分析结果下载地址
// @Description 仅对已成功的任务可用
// @Tags 任务
// @Produce json
// @Param job_id path string true "任务job_id"
// @Success 200 {object} dao.URLResponse "获取成功"
// @Failure 404 {object} ErrorResponse "任务不存在"
// @Failure 409 {object} ErrorResponse "任务未成功"
// @Router /api/v1/job/{job_id}/results_url [get]
func (s *Server) handleResultsURL(c *gin.Context) {
	job := c.MustGet(jobKey).(*model.JobRecord)

	url, err := s.jobs.ResultsURL(c, job.JobId)
	if err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dao.NewURLResponse(url.URL, url.ExpiresIn))
}

// handleResults 获取分析结果
// @Summary 获取分析结果
// @Description 重新拉取检测结果并聚合，返回结果文档
// @Tags 任务
// @Produce json
// @Param job_id path string true "任务job_id"
// @Success 200 {object} model.ResultsDocument "获取成功"
// @Failure 400 {object} ErrorResponse "上游服务错误"
// @Failure 404 {object} ErrorResponse "任务不存在"
// @Failure 409 {object} ErrorResponse "任务未成功"
// @Router /api/v1/job/{job_id}/results [get]
func (s *Server) handleResults(c *gin.Context) {
	job := c.MustGet(jobKey).(*model.JobRecord)

	doc, err := s.jobs.Results(c, job.JobId)
	if err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// handleDeleteJob 删除任务
// @Summary 删除任务
// @Description 删除任务记录及其存储的视频和结果
// @Tags 任务
// @Produce json
// @Param job_id path string true "任务job_id"
// @Success 200 {object} dao.SuccessResponse "删除成功"
// @Failure 404 {object} ErrorResponse "任务不存在"
// @Router /api/v1/job/{job_id} [delete]
func (s *Server) handleDeleteJob(c *gin.Context) {
	job := c.MustGet(jobKey).(*model.JobRecord)

	if err := s.jobs.DeleteJob(c, job.JobId); err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dao.SuccessResponse{Success: true})
}

// handleListJobs 获取任务列表
// @Summary 获取用户任务列表
// @Description 按提交时间倒序分页，使用上一页返回的last_evaluated_key翻页
// @Tags 任务
// @Produce json
// @Param user_id path string true "用户id"
// @Param job_id query string false "上一页最后一个任务的job_id"
// @Param request_timestamp query int false "上一页最后一个任务的提交时间"
// @Success 200 {object} dao.ListJobsResponse "获取成功"
// @Failure 400 {object} ErrorResponse "请求参数错误"
// @Failure 403 {object} ErrorResponse "无权限"
// @Router /api/v1/user/{user_id}/jobs [get]
func (s *Server) handleListJobs(c *gin.Context) {
	userId := c.Param("user_id")
	if !s.sameUser(c, userId) {
		s.writeError(c, http.StatusForbidden, errors.New("cannot list jobs of another user"))
		return
	}

	var req dao.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	jobs, next, err := s.jobs.ListJobs(c, userId, req.Cursor(userId))
	if err != nil {
		s.writeServiceError(c, err)
		return
	}
	if jobs == nil {
		jobs = []*model.JobRecord{}
	}
	c.JSON(http.StatusOK, dao.ListJobsResponse{Jobs: jobs, LastEvaluatedKey: next})
}

// handleNotification 任务完成通知
// @Summary 接收任务完成通知
// @Description 分析服务在任务结束时推送，与nsq消息格式相同
// @Tags 通知
// @Accept json
// @Produce json
// @Param req body model.CompletionNotification true "完成通知"
// @Success 200 {object} dao.SuccessResponse "处理成功"
// @Failure 400 {object} ErrorResponse "请求参数错误"
// @Failure 404 {object} ErrorResponse "任务不存在"
// @Router /api/v1/notifications [post]
func (s *Server) handleNotification(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	n, err := model.ParseCompletionNotification(body)
	if err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	log.GetLogger(c).Infof("completion notification for job %s: %s", n.JobId, n.Status)
	if err := s.jobs.OnCompletion(c, n.JobId, n.Status); err != nil {
		s.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dao.SuccessResponse{Success: true})
}
