package tasks

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"square.ai/skill-gateway/app/domain/task"
	"square.ai/skill-gateway/app/interfaces/http/responses"
)

const TaskContextKeyID = "task_id"

type TaskRoute struct {
	taskService *task.TaskService
}

func NewTaskRoute(taskService *task.TaskService) *TaskRoute {
	return &TaskRoute{
		taskService: taskService,
	}
}

func (route *TaskRoute) RegisterRouter(router gin.IRouter) {
	tasksRouter := router.Group("/tasks")
	tasksRouter.GET("/:"+TaskContextKeyID+"/status", route.status)
	tasksRouter.GET("/:"+TaskContextKeyID+"/result", route.result)
}

type TaskStatusResponse struct {
	TaskID string     `json:"task_id"`
	Status task.State `json:"status"`
}

type TaskResultResponse struct {
	TaskID string          `json:"task_id"`
	Status task.State      `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// TaskStatus
// @Summary Task status
// @Tags Tasks
// @Produce json
// @Param task_id path string true "Task ID"
// @Success 200 {object} TaskStatusResponse
// @Failure 404 {object} responses.ErrorResponse "Unknown or expired task"
// @Router /v1/tasks/{task_id}/status [get]
func (route *TaskRoute) status(reqCtx *gin.Context) {
	handle, err := route.taskService.Status(reqCtx.Request.Context(), reqCtx.Param(TaskContextKeyID))
	if err != nil {
		responses.AbortWithError(reqCtx, err, "2f3a4b5c-6d7e-4f8a-9b0c-1d2e3f4a5b6c")
		return
	}
	reqCtx.JSON(http.StatusOK, TaskStatusResponse{
		TaskID: handle.TaskID,
		Status: handle.State,
	})
}

// TaskResult
// @Summary Task result
// @Description Returns the result of a finished task. Unfinished tasks answer 202 with their status; failed tasks carry the worker's error message.
// @Tags Tasks
// @Produce json
// @Param task_id path string true "Task ID"
// @Success 200 {object} TaskResultResponse
// @Success 202 {object} TaskStatusResponse "Task has not finished"
// @Failure 404 {object} responses.ErrorResponse "Unknown or expired task"
// @Router /v1/tasks/{task_id}/result [get]
func (route *TaskRoute) result(reqCtx *gin.Context) {
	handle, err := route.taskService.Result(reqCtx.Request.Context(), reqCtx.Param(TaskContextKeyID))
	if errors.Is(err, task.ErrNotReady) {
		reqCtx.JSON(http.StatusAccepted, TaskStatusResponse{
			TaskID: handle.TaskID,
			Status: handle.State,
		})
		return
	}
	if err != nil {
		responses.AbortWithError(reqCtx, err, "8a9b0c1d-2e3f-4a4b-8c5d-6e7f8a9b0c1d")
		return
	}
	reqCtx.JSON(http.StatusOK, TaskResultResponse{
		TaskID: handle.TaskID,
		Status: handle.State,
		Result: handle.Result,
		Error:  handle.Error,
	})
}
