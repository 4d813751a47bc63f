package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/greenhouse-iot/sensordash/internal/api"
	"github.com/greenhouse-iot/sensordash/internal/errors"
	"github.com/greenhouse-iot/sensordash/internal/sensor"
	"github.com/greenhouse-iot/sensordash/internal/ui"
)

// SensorInputOptions holds the fields accepted by sensors add and update.
type SensorInputOptions struct {
	Name     string
	Type     string
	Location string
	Status   string
}

var (
	sensorAddOpts    SensorInputOptions
	sensorUpdateOpts SensorInputOptions
)

var sensorsCmd = &cobra.Command{
	Use:     "sensors",
	Aliases: []string{"sensor"},
	Short:   "Manage sensors",
	Long: `List, inspect, create, update, and delete sensors on the configured API.

Examples:
  sensordash sensors list
  sensordash sensors get 3
  sensordash sensors add --name "Bench 2" --type Humidity --location "House A"
  sensordash sensors update 3 --status inactive
  sensordash sensors delete 3`,
	Annotations: guarded(),
}

var sensorsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all sensors",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app()
		if err != nil {
			return err
		}
		return sensorsList(cmd.Context(), a, cmd.OutOrStdout())
	},
}

var sensorsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one sensor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ParseSensorID(args[0])
		if err != nil {
			return err
		}
		a, err := app()
		if err != nil {
			return err
		}
		return sensorsGet(cmd.Context(), a, cmd.OutOrStdout(), id)
	},
}

var sensorsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a sensor",
	Long: `Create a sensor. The type decides which history series its readings feed:
Temperature, Humidity, Light, or Soil.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app()
		if err != nil {
			return err
		}
		return sensorsAdd(cmd.Context(), a, cmd.OutOrStdout(), sensorAddOpts)
	},
}

var sensorsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a sensor's fields",
	Long: `Change a sensor's fields. Only the flags you pass are sent.

Examples:
  sensordash sensors update 3 --location "House B"
  sensordash sensors update 3 --status active`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ParseSensorID(args[0])
		if err != nil {
			return err
		}
		a, err := app()
		if err != nil {
			return err
		}
		return sensorsUpdate(cmd.Context(), a, cmd.OutOrStdout(), id, sensorUpdateOpts)
	},
}

var sensorsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a sensor",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ParseSensorID(args[0])
		if err != nil {
			return err
		}
		a, err := app()
		if err != nil {
			return err
		}
		return sensorsDelete(cmd.Context(), a, cmd.OutOrStdout(), id)
	},
}

func init() {
	addInputFlags(sensorsAddCmd, &sensorAddOpts)
	addInputFlags(sensorsUpdateCmd, &sensorUpdateOpts)
	_ = sensorsAddCmd.MarkFlagRequired("name")
	_ = sensorsAddCmd.MarkFlagRequired("type")

	sensorsCmd.AddCommand(sensorsListCmd, sensorsGetCmd, sensorsAddCmd, sensorsUpdateCmd, sensorsDeleteCmd)
	rootCmd.AddCommand(sensorsCmd)
}

func addInputFlags(cmd *cobra.Command, opts *SensorInputOptions) {
	cmd.Flags().StringVar(&opts.Name, "name", "", "sensor name")
	cmd.Flags().StringVar(&opts.Type, "type", "", "sensor type (Temperature, Humidity, Light, Soil)")
	cmd.Flags().StringVar(&opts.Location, "location", "", "where the sensor is installed")
	cmd.Flags().StringVar(&opts.Status, "status", "", "active or inactive")
}

// sensorColumns is the table layout for sensor listings.
var sensorColumns = []ui.TableColumn{
	{Title: ""},
	{Title: "ID"},
	{Title: "Name"},
	{Title: "Type"},
	{Title: "Location"},
	{Title: "Value"},
	{Title: "Updated"},
}

func sensorRow(r sensor.Reading) []string {
	return []string{
		ui.StatusSymbol(r.Active()),
		strconv.FormatInt(r.ID, 10),
		r.Name,
		r.Type,
		r.Location,
		r.CurrentValue,
		r.LastUpdate,
	}
}

func sensorsList(ctx context.Context, a *App, w io.Writer) error {
	client, err := a.apiClient()
	if err != nil {
		return err
	}
	raws, err := client.ListSensors(ctx)
	if err != nil {
		return apiError(err, "list sensors")
	}
	readings := sensor.NormalizeAll(raws)

	if machineMode {
		return WriteJSONSuccess(w, readings)
	}
	if len(readings) == 0 {
		fmt.Fprintln(w, ui.MutedStyle().Render("No sensors yet. Add one with 'sensordash sensors add'."))
		return nil
	}

	rows := make([][]string, len(readings))
	for i, r := range readings {
		rows[i] = sensorRow(r)
	}
	fmt.Fprintln(w, ui.RenderSimpleTable(sensorColumns, rows))
	return nil
}

func sensorsGet(ctx context.Context, a *App, w io.Writer, id int64) error {
	client, err := a.apiClient()
	if err != nil {
		return err
	}
	raw, err := client.GetSensor(ctx, id)
	if err != nil {
		return apiError(err, fmt.Sprintf("get sensor %d", id))
	}
	r := sensor.Normalize(raw)

	if machineMode {
		return WriteJSONSuccess(w, r)
	}

	label := ui.MutedStyle().Width(10)
	fmt.Fprintf(w, "%s %s\n", ui.StatusSymbol(r.Active()), ui.BoldStyle().Render(r.Name))
	fmt.Fprintf(w, "  %s%d\n", label.Render("ID"), r.ID)
	fmt.Fprintf(w, "  %s%s\n", label.Render("Type"), r.Type)
	fmt.Fprintf(w, "  %s%s\n", label.Render("Location"), r.Location)
	fmt.Fprintf(w, "  %s%s\n", label.Render("Status"), r.Status)
	fmt.Fprintf(w, "  %s%s\n", label.Render("Value"), r.CurrentValue)
	fmt.Fprintf(w, "  %s%s\n", label.Render("Updated"), r.LastUpdate)
	if r.CreatedAt != "" {
		fmt.Fprintf(w, "  %s%s\n", label.Render("Created"), r.CreatedAt)
	}
	return nil
}

func sensorsAdd(ctx context.Context, a *App, w io.Writer, opts SensorInputOptions) error {
	if opts.Name == "" || opts.Type == "" {
		return errors.New(errors.ErrInput,
			"A sensor needs a name and a type",
			"Pass --name and --type.")
	}
	status, err := ParseStatus(opts.Status)
	if err != nil {
		return err
	}
	if status == "" {
		status = sensor.StatusActive
	}

	client, err := a.apiClient()
	if err != nil {
		return err
	}
	res, err := client.CreateSensor(ctx, api.SensorInput{
		Name:     opts.Name,
		Type:     opts.Type,
		Location: opts.Location,
		Status:   status,
	})
	if err != nil {
		return apiError(err, "create sensor")
	}
	return writeResult(w, res, fmt.Sprintf("Created sensor %d", res.ID))
}

func sensorsUpdate(ctx context.Context, a *App, w io.Writer, id int64, opts SensorInputOptions) error {
	status, err := ParseStatus(opts.Status)
	if err != nil {
		return err
	}
	in := api.SensorInput{Name: opts.Name, Type: opts.Type, Location: opts.Location, Status: status}
	if in == (api.SensorInput{}) {
		return errors.New(errors.ErrInput,
			"Nothing to update",
			"Pass at least one of --name, --type, --location, --status.")
	}

	client, err := a.apiClient()
	if err != nil {
		return err
	}
	res, err := client.UpdateSensor(ctx, id, in)
	if err != nil {
		return apiError(err, fmt.Sprintf("update sensor %d", id))
	}
	return writeResult(w, res, fmt.Sprintf("Updated sensor %d", id))
}

func sensorsDelete(ctx context.Context, a *App, w io.Writer, id int64) error {
	client, err := a.apiClient()
	if err != nil {
		return err
	}
	res, err := client.DeleteSensor(ctx, id)
	if err != nil {
		return apiError(err, fmt.Sprintf("delete sensor %d", id))
	}
	return writeResult(w, res, fmt.Sprintf("Deleted sensor %d", id))
}

// writeResult reports a mutation. The server's message wins over fallback.
func writeResult(w io.Writer, res api.Result, fallback string) error {
	if machineMode {
		return WriteJSONSuccess(w, res)
	}
	msg := res.Message
	if msg == "" {
		msg = fallback
	}
	fmt.Fprintf(w, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), msg)
	return nil
}
